package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Kafka      KafkaConfig
	Telemetry  TelemetryConfig
	RecycleBin RecycleBinConfig
	Rating     RatingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// KafkaConfig configures the activity event relay. No brokers disables it.
type KafkaConfig struct {
	Brokers   []string
	PollEvery time.Duration
	BatchSize int
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRatio  float64
}

type RecycleBinConfig struct {
	Retention     time.Duration
	PurgeSchedule string
	LockTTL       time.Duration
}

type RatingConfig struct {
	CacheTTL time.Duration
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	viper.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_POLL_EVERY", "2s")
	viper.SetDefault("KAFKA_BATCH_SIZE", 100)

	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_SERVICE_NAME", "repairdesk")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	viper.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	viper.SetDefault("RECYCLE_BIN_RETENTION", "720h")
	viper.SetDefault("RECYCLE_BIN_PURGE_SCHEDULE", "@every 1h")
	viper.SetDefault("RECYCLE_BIN_LOCK_TTL", "5m")

	viper.SetDefault("RATING_CACHE_TTL", "1h")
}

// LoadConfig loads the API configuration. JWT_SECRET must be set.
func LoadConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}
	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return config, nil
}

// Load reads an optional .env file and then the process environment without
// validating secrets, for tools that only need the database.
// Environment variables win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	setDefaults()
	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetDuration("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetDuration("JWT_REFRESH_EXPIRY"),
		},
		Kafka: KafkaConfig{
			Brokers:   splitList(viper.GetString("KAFKA_BROKERS")),
			PollEvery: viper.GetDuration("KAFKA_POLL_EVERY"),
			BatchSize: viper.GetInt("KAFKA_BATCH_SIZE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      viper.GetBool("OTEL_ENABLED"),
			ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRatio:  viper.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
		RecycleBin: RecycleBinConfig{
			Retention:     viper.GetDuration("RECYCLE_BIN_RETENTION"),
			PurgeSchedule: viper.GetString("RECYCLE_BIN_PURGE_SCHEDULE"),
			LockTTL:       viper.GetDuration("RECYCLE_BIN_LOCK_TTL"),
		},
		Rating: RatingConfig{
			CacheTTL: viper.GetDuration("RATING_CACHE_TTL"),
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairdesk/config"
	deliveryHttp "repairdesk/internal/delivery/http"
	"repairdesk/internal/delivery/http/handler"
	"repairdesk/internal/delivery/http/middleware"
	"repairdesk/internal/delivery/scheduler"
	"repairdesk/internal/infrastructure/cache"
	"repairdesk/internal/infrastructure/database"
	"repairdesk/internal/infrastructure/messaging"
	"repairdesk/internal/infrastructure/telemetry"
	"repairdesk/internal/repository"
	"repairdesk/internal/service"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/jwt"
	"repairdesk/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	DB            *gorm.DB
	RedisClient   *redis.Client
	KafkaWriter   *kafka.Writer
	Server        *http.Server
	PurgeJob      *scheduler.RecycleBinJob
	Publisher     *service.OutboxPublisher
	shutdownTrace func(context.Context) error
	stopWorkers   context.CancelFunc
	workersDone   chan struct{}
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	// Initialize tracing
	shutdownTrace, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTrace = shutdownTrace

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	// Initialize Kafka (optional)
	app.KafkaWriter = messaging.NewKafkaWriter(cfg.Kafka)

	// Initialize all layers
	app.initialize()

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// initialize wires repositories, services, usecases, handlers and background workers
func (app *App) initialize() {
	cfg, db, redisClient, log := app.Config, app.DB, app.RedisClient, app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	technicianProfileRepo := repository.NewTechnicianProfileRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo, outboxRepo)
	ratingCache := service.NewRedisRatingCache(redisClient, cfg.Rating.CacheTTL)
	locker := service.NewRedisLocker(redisClient, cfg.RecycleBin.LockTTL)

	var writer service.MessageWriter
	if app.KafkaWriter != nil {
		writer = app.KafkaWriter
	}
	app.Publisher = service.NewOutboxPublisher(transactor, outboxRepo, writer, log, service.OutboxPublisherConfig{
		PollEvery: cfg.Kafka.PollEvery,
		BatchSize: cfg.Kafka.BatchSize,
	})

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, transactor, userRepo, technicianProfileRepo, auditService, jwtService, redisClient)
	serviceUsecase := usecase.NewServiceCatalogUsecase(log, transactor, serviceRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, transactor, appointmentRepo, serviceRepo, userRepo, auditService)
	recycleBinUsecase := usecase.NewRecycleBinUsecase(log, transactor, appointmentRepo, reviewRepo, technicianProfileRepo, auditService, locker, ratingCache)
	ratingUsecase := usecase.NewRatingUsecase(log, transactor, appointmentRepo, reviewRepo, technicianProfileRepo, auditService, ratingCache)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)
	staffUsecase := usecase.NewStaffUsecase(log, transactor, userRepo, roleRepo, technicianProfileRepo, auditService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	serviceHandler := handler.NewServiceHandler(serviceUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, ratingUsecase, recycleBinUsecase, customValidator)
	recycleBinHandler := handler.NewRecycleBinHandler(recycleBinUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	staffHandler := handler.NewStaffHandler(staffUsecase, ratingUsecase, customValidator)
	healthHandler := handler.NewHealthHandler(log, db, redisClient)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()
	accessLogMiddleware := middleware.NewAccessLogMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		serviceHandler,
		appointmentHandler,
		recycleBinHandler,
		auditLogHandler,
		staffHandler,
		healthHandler,
		authMiddleware,
		corsMiddleware,
		accessLogMiddleware,
	)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Background jobs
	app.PurgeJob = scheduler.NewRecycleBinJob(log, recycleBinUsecase, cfg.RecycleBin.Retention)
}

// Run starts the HTTP server and background workers and handles graceful shutdown
func (app *App) Run() {
	workerCtx, stop := context.WithCancel(context.Background())
	app.stopWorkers = stop
	app.workersDone = make(chan struct{})
	go func() {
		defer close(app.workersDone)
		app.Publisher.Run(workerCtx)
	}()

	if err := app.PurgeJob.Start(app.Config.RecycleBin.PurgeSchedule); err != nil {
		app.Log.Fatalf("Failed to schedule recycle bin purge: %v", err)
	}

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop background workers
	app.PurgeJob.Stop()
	if app.stopWorkers != nil {
		app.stopWorkers()
		<-app.workersDone
	}

	if err := app.shutdownTrace(ctx); err != nil {
		app.Log.Errorf("Failed to flush traces: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, kafka)
func (app *App) Close() {
	// Close Kafka writer
	if app.KafkaWriter != nil {
		app.KafkaWriter.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

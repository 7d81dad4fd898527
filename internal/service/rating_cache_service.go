package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// RedisRatingKeyPrefix prefixes the per-technician rating hash
	RedisRatingKeyPrefix = "technician:rating:"

	ratingFieldAverage = "average"
	ratingFieldCount   = "count"
)

// =============================================================================
// Types
// =============================================================================

// CachedRating is the technician aggregate as stored in Redis
type CachedRating struct {
	Average decimal.Decimal
	Count   int
}

// RatingCache keeps technician averages close to the read path.
// The database row stays authoritative; the cache is rebuilt from it on a miss.
type RatingCache interface {
	Get(ctx context.Context, technicianID uuid.UUID) (*CachedRating, error)
	Set(ctx context.Context, technicianID uuid.UUID, rating CachedRating) error
}

type redisRatingCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// =============================================================================
// Constructor
// =============================================================================

func NewRedisRatingCache(redisClient *redis.Client, ttl time.Duration) RatingCache {
	return &redisRatingCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Get returns nil, nil on a cache miss
func (c *redisRatingCache) Get(ctx context.Context, technicianID uuid.UUID) (*CachedRating, error) {
	values, err := c.redisClient.HGetAll(ctx, ratingKey(technicianID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rating cache: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	average, err := decimal.NewFromString(values[ratingFieldAverage])
	if err != nil {
		return nil, fmt.Errorf("decode cached average: %w", err)
	}
	count, err := strconv.Atoi(values[ratingFieldCount])
	if err != nil {
		return nil, fmt.Errorf("decode cached count: %w", err)
	}

	return &CachedRating{Average: average, Count: count}, nil
}

// Set overwrites the cached aggregate atomically (HSET + EXPIRE in one MULTI)
func (c *redisRatingCache) Set(ctx context.Context, technicianID uuid.UUID, rating CachedRating) error {
	key := ratingKey(technicianID)

	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			ratingFieldAverage, rating.Average.StringFixed(2),
			ratingFieldCount, rating.Count,
		)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write rating cache: %w", err)
	}
	return nil
}

func ratingKey(technicianID uuid.UUID) string {
	return RedisRatingKeyPrefix + technicianID.String()
}

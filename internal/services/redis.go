package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"gorm.io/gorm"
)

var RedisClient *redis.Client

const (
	systemConfigCacheTTL = 5 * time.Minute
	paymentLockTTL       = 15 * time.Second
	paymentLockRetry     = 100 * time.Millisecond
	paymentLockAttempts  = 50
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// GetSystemConfig loads the per-company pricing config, preferring the Redis
// cache. Every quote request reads this, so the cache keeps the hot path off
// the database.
func GetSystemConfig(ctx context.Context, db *gorm.DB, companyID uint) (*models.SystemConfig, error) {
	key := fmt.Sprintf("company:config:%d", companyID)

	if RedisClient != nil {
		if data, err := RedisClient.Get(ctx, key).Result(); err == nil {
			var config models.SystemConfig
			if err := json.Unmarshal([]byte(data), &config); err == nil {
				return &config, nil
			}
		}
	}

	var config models.SystemConfig
	if err := db.Where("company_id = ?", companyID).First(&config).Error; err != nil {
		return nil, err
	}

	if RedisClient != nil {
		if data, err := json.Marshal(&config); err == nil {
			RedisClient.Set(ctx, key, data, systemConfigCacheTTL)
		}
	}

	return &config, nil
}

// InvalidateSystemConfig drops the cached config after an update.
func InvalidateSystemConfig(ctx context.Context, companyID uint) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, fmt.Sprintf("company:config:%d", companyID))
}

// WithPaymentLock serializes writers of a single payment intent's row.
// Client-initiated captures and webhook deliveries for the same intent can
// arrive concurrently, and last-writer-wins on the row is not acceptable when
// one writer carries the processor's source of truth. The lock is best-effort:
// if Redis is down or never configured the callback still runs, so the
// payment path stays available.
func WithPaymentLock(ctx context.Context, intentID string, fn func() error) error {
	if RedisClient == nil || intentID == "" {
		return fn()
	}

	key := "payment:lock:" + intentID
	for i := 0; i < paymentLockAttempts; i++ {
		ok, err := RedisClient.SetNX(ctx, key, "1", paymentLockTTL).Result()
		if err != nil {
			// Redis unavailable, fall through unlocked.
			return fn()
		}
		if ok {
			defer RedisClient.Del(ctx, key)
			return fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(paymentLockRetry):
		}
	}

	// Lock holder overstayed its TTL window; proceed rather than fail the
	// capture outright.
	return fn()
}

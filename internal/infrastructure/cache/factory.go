package cache

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// LockerFactory chooses the location locker implementation from configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	dial                  func(context.Context, config.RedisConfig) (*redis.Client, error)
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to an
// in-process lock. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis locker when Redis is enabled and reachable, else an
// in-memory one if fallback is allowed. The returned close func releases the
// Redis client, if any.
func (f *LockerFactory) Create(ctx context.Context) (appinv.LocationLocker, func() error, error) {
	noop := func() error { return nil }
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory location locks")
		return NewInMemoryLocationLocker(), noop, nil
	}

	client, err := f.dial(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis location locks", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisLocationLocker(client, ""), client.Close, nil
	}
	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for location locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory location locks. "+
		"Concurrent finalizes on other instances will not be serialized.",
		zap.Error(err),
	)
	return NewInMemoryLocationLocker(), noop, nil
}

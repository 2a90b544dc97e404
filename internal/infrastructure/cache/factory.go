package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateLimiterFactory creates rate limiters based on configuration
type RateLimiterFactory struct {
	redisConfig           config.RedisConfig
	limit                 int
	window                time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateLimiterFactoryOption is a functional option for configuring the factory
type RateLimiterFactoryOption func(*RateLimiterFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory limiter
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateLimiterFactory creates a new factory for limit requests per window
func NewRateLimiterFactory(cfg config.RedisConfig, limit int, window time.Duration, opts ...RateLimiterFactoryOption) *RateLimiterFactory {
	f := &RateLimiterFactory{
		redisConfig:           cfg,
		limit:                 limit,
		window:                window,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisLimiter creates a Redis-backed limiter
func (f *RateLimiterFactory) CreateRedisLimiter(ctx context.Context) (RateLimiter, error) {
	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis rate limiter: %w", err)
	}
	return NewRedisRateLimiter(client, f.limit, f.window, DefaultKeyPrefix), nil
}

// CreateInMemoryLimiter creates a limiter local to this process
func (f *RateLimiterFactory) CreateInMemoryLimiter() RateLimiter {
	return NewInMemoryRateLimiter(f.limit, f.window)
}

// CreateLimiter uses Redis when it is enabled and reachable, and otherwise
// falls back to the in-memory limiter if allowed
func (f *RateLimiterFactory) CreateLimiter(ctx context.Context) (RateLimiter, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory rate limiter")
		return f.CreateInMemoryLimiter(), nil
	}

	limiter, err := f.CreateRedisLimiter(ctx)
	if err == nil {
		f.logger.Info("using Redis rate limiter")
		return limiter, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for rate limiting but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rate limiter. "+
		"Limits are not shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryLimiter(), nil
}

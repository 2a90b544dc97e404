package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the rate limit counters
const DefaultKeyPrefix = "burbarshop:ratelimit:"

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisRateLimiter is a fixed-window limiter shared by every instance that
// points at the same Redis. A window is one INCR'd key that expires with it.
type RedisRateLimiter struct {
	client    redis.Cmdable
	closer    func() error
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRedisRateLimiter creates a limiter over client
func NewRedisRateLimiter(client *redis.Client, limit int, period time.Duration, keyPrefix string) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisRateLimiter{
		client:    client,
		closer:    client.Close,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    period,
		now:       time.Now,
	}
}

// windowKey names the counter of the window now falls in
func (l *RedisRateLimiter) windowKey(key string) string {
	slot := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s%s:%d", l.keyPrefix, key, slot)
}

// Allow increments the counter of the current window
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	k := l.windowKey(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.PExpire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}

	used := int(incr.Val())
	if used > l.limit {
		return false, 0, nil
	}
	return true, l.limit - used, nil
}

// Limit returns the requests allowed per window
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}

// Close closes the Redis client
func (l *RedisRateLimiter) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

var _ RateLimiter = (*RedisRateLimiter)(nil)

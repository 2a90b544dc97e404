// Package cache holds the shared request counters behind the admin API rate
// limit: an in-process limiter and a Redis one for several instances.
package cache

import (
	"context"
	"sync"
	"time"
)

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	// Allow records one request for key and reports whether it fits the
	// window, with the requests left after it
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	// Limit is the number of requests allowed per window
	Limit() int
	Close() error
}

// InMemoryRateLimiter is a fixed-window limiter held in process memory.
// Counters are not shared between instances.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	used  int
	start time.Time
}

// NewInMemoryRateLimiter creates a limiter and starts its cleanup loop
func NewInMemoryRateLimiter(limit int, period time.Duration) *InMemoryRateLimiter {
	rl := &InMemoryRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(period * 2)
	return rl
}

// cleanup removes expired clients periodically
func (rl *InMemoryRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.clients {
				if now.Sub(w.start) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &window{start: now}
		rl.clients[key] = w
	}
	if w.used >= rl.limit {
		return false, 0, nil
	}
	w.used++
	return true, rl.limit - w.used, nil
}

// Limit returns the requests allowed per window
func (rl *InMemoryRateLimiter) Limit() int {
	return rl.limit
}

// Close stops the cleanup loop
func (rl *InMemoryRateLimiter) Close() error {
	rl.once.Do(func() { close(rl.stop) })
	return nil
}

var _ RateLimiter = (*InMemoryRateLimiter)(nil)

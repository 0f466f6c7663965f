// Package ratelimit caps how often a key (usually a user id) may hit an
// endpoint inside a fixed window. It is abuse mitigation, not accounting:
// counts are approximate and are never persisted with quota state.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	mu    sync.Mutex
	count int
}

// MemoryLimiter keeps one counter per key in a go-cache entry that expires
// with the window, so stale keys are evicted by the janitor.
type MemoryLimiter struct {
	cache  *cache.Cache
	limit  int
	window time.Duration
	mu     sync.Mutex
}

func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  cache.New(windowSize, 2*windowSize),
		limit:  limit,
		window: windowSize,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	l.mu.Lock()
	var w *window
	if x, found := l.cache.Get(key); found {
		w = x.(*window)
	} else {
		w = &window{}
		l.cache.Set(key, w, l.window)
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// allowScript increments the window counter and arms its expiry on first hit.
// KEYS[1] = counter key
// ARGV[1] = window in milliseconds
var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter shares the window across instances.
type RedisLimiter struct {
	client    redis.Cmdable
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, windowSize time.Duration, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    windowSize,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	count, err := allowScript.Run(ctx, l.client, []string{l.keyPrefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}

package ratelimit

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func testPrefix(t *testing.T) string {
	return fmt.Sprintf("ratelimit-test:%s:%d:", t.Name(), time.Now().UnixNano())
}

func TestRedisLimiterWindowIntegration(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	prefix := testPrefix(t)
	l := NewRedisLimiter(rdb, 2, 200*time.Millisecond, prefix)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "third call inside the window must be rejected")

	ok, _ = l.Allow(ctx, "user-2")
	assert.True(t, ok, "keys are independent")

	ttl, err := rdb.PTTL(ctx, prefix+"user-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "counter carries an expiry")

	time.Sleep(300 * time.Millisecond)

	ok, err = l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
}

func TestRedisLimiterConcurrentIntegration(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	l := NewRedisLimiter(rdb, 5, time.Minute, testPrefix(t))

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := l.Allow(ctx, "hot-key"); err == nil && ok {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), allowed)
}

func TestRedisLimiterUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := NewRedisLimiter(rdb, 5, time.Minute, "")
	ok, err := l.Allow(context.Background(), "user-1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLimiterDisabledSkipsRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	ok, err := NewRedisLimiter(rdb, 0, time.Minute, "").Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

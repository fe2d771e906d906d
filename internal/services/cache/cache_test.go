package cache_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-loan-calculator/internal/services/cache"
)

func TestScheduleKey(t *testing.T) {
	assert.Equal(t, "schedule:abc", cache.ScheduleKey("abc"))
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v"))
	val, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemoryCacheWithClock(time.Minute, func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", "v"))

	now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ExpiredReadKeepsFreshWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var c *cache.MemoryCache
	refresh := false
	c = cache.NewMemoryCacheWithClock(time.Minute, func() time.Time {
		// Simulate a Set landing between the expiry check and the delete.
		if refresh {
			refresh = false
			require.NoError(t, c.Set(ctx, "k", "fresh"))
		}
		return now
	})

	require.NoError(t, c.Set(ctx, "k", "stale"))
	now = now.Add(time.Minute)

	refresh = true
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	val, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "fresh", val)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", "value")
			_, _ = c.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	c := cache.NewRedisCacheFromClient(client, time.Minute)
	defer c.Close()

	require.NoError(t, c.HealthCheck(ctx))
	require.NoError(t, c.Set(ctx, "test:schedule", "payload"))

	val, ok := c.Get(ctx, "test:schedule")
	assert.True(t, ok)
	assert.Equal(t, "payload", val)

	require.NoError(t, c.Delete(ctx, "test:schedule"))
	_, ok = c.Get(ctx, "test:schedule")
	assert.False(t, ok)
}

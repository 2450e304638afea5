package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheSetAndGet(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	cache.Set(ctx, "probe", "auth-required", time.Minute)

	v, ok := cache.Get(ctx, "probe")
	require.True(t, ok)
	assert.Equal(t, "auth-required", v)
}

func TestInMemoryCacheMissingKey(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	cache.Set(ctx, "k", 1, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCacheDeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	cache.Set(ctx, "a", 1, time.Minute)
	cache.Set(ctx, "b", 2, time.Minute)

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)
}

func TestInMemoryCacheGetWithRefreshExtendsTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	cache.Set(ctx, "k", 7, 50*time.Millisecond)

	// Refresh with a longer TTL; the entry must survive the original window.
	v, ok := cache.GetWithRefresh(ctx, "k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 7, v)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(ctx, "k")
	assert.True(t, ok)
}

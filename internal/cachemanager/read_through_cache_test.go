package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadThroughCacheFetchesOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(cache, func(ctx context.Context, input string) (int, error) {
		calls++
		return len(input), nil
	}, false)

	v, err := rtc.Get(ctx, "k", "hello", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = rtc.Get(ctx, "k", "hello", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, calls, "second get should be served from cache")
}

func TestReadThroughCacheSkipMode(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(cache, func(ctx context.Context, input string) (int, error) {
		calls++
		return calls, nil
	}, true)

	for i := 1; i <= 3; i++ {
		v, err := rtc.Get(ctx, "k", "in", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, v, "skip mode must hit the source every time")
	}
}

func TestReadThroughCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(cache, func(ctx context.Context, input string) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, false)

	_, err := rtc.Get(ctx, "k", "in", time.Minute)
	require.Error(t, err)

	v, err := rtc.Get(ctx, "k", "in", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestReadThroughCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(cache, func(ctx context.Context, input string) (int, error) {
		calls++
		return calls, nil
	}, false)

	_, err := rtc.Get(ctx, "k", "in", time.Minute)
	require.NoError(t, err)
	require.NoError(t, rtc.Invalidate(ctx, "k"))

	v, err := rtc.Get(ctx, "k", "in", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidate must force a refetch")
}

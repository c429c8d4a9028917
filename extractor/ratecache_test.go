package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestRateCache(t *testing.T, limit int64) *RateCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRateCache(client, time.Minute, limit)
}

func TestRateCacheAllowWithinLimit(t *testing.T) {
	cache := newTestRateCache(t, 2)
	ctx := context.Background()

	ok, err := cache.Allow(ctx, "acme")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.Allow(ctx, "acme")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.Allow(ctx, "acme")
	require.NoError(t, err)
	require.False(t, ok, "third attempt should exceed the limit of 2")
}

func TestRateCacheAllowIsolatesPerTenant(t *testing.T) {
	cache := newTestRateCache(t, 1)
	ctx := context.Background()

	ok, err := cache.Allow(ctx, "acme")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.Allow(ctx, "globex")
	require.NoError(t, err)
	require.True(t, ok, "a different tenant's count must not be shared")
}

func TestRateCacheSeenRecentlyDedupes(t *testing.T) {
	cache := newTestRateCache(t, 100)
	ctx := context.Background()

	seen, err := cache.SeenRecently(ctx, "acme", "launch product X")
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = cache.SeenRecently(ctx, "acme", "launch product X")
	require.NoError(t, err)
	require.True(t, seen)

	seen, err = cache.SeenRecently(ctx, "acme", "launch product Y")
	require.NoError(t, err)
	require.False(t, seen, "a different statement must not be treated as a duplicate")
}

func TestRateCacheNilClientAlwaysAllows(t *testing.T) {
	var cache *RateCache
	ok, err := cache.Allow(context.Background(), "acme")
	require.NoError(t, err)
	require.True(t, ok)
}

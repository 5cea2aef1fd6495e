package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/services"
)

func newRedisFeedCache(t *testing.T, ttl time.Duration) (services.FeedCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return services.NewFeedCache(client, ttl, zap.NewNop()), srv
}

func TestRedisFeedCacheRoundTrip(t *testing.T) {
	cache, srv := newRedisFeedCache(t, 30*time.Second)
	ctx := context.Background()

	var out []string
	hit, gen := cache.Get(ctx, &out)
	require.False(t, hit)
	assert.Zero(t, gen)

	cache.Set(ctx, gen, []string{"a", "b"})
	hit, _ = cache.Get(ctx, &out)
	require.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, out)

	srv.FastForward(31 * time.Second)
	hit, _ = cache.Get(ctx, &out)
	assert.False(t, hit, "entry expires after the TTL")
}

func TestRedisFeedCacheDropsStaleSet(t *testing.T) {
	cache, _ := newRedisFeedCache(t, time.Minute)
	ctx := context.Background()

	var out []string
	_, stale := cache.Get(ctx, &out)

	// A write lands while the miss is being computed.
	cache.Invalidate(ctx)
	cache.Set(ctx, stale, []string{"old"})

	hit, gen := cache.Get(ctx, &out)
	require.False(t, hit, "a feed read before the invalidation is not stored")
	assert.Equal(t, stale+1, gen)

	cache.Set(ctx, gen, []string{"new"})
	hit, _ = cache.Get(ctx, &out)
	require.True(t, hit)
	assert.Equal(t, []string{"new"}, out)
}

func TestRedisFeedCacheInvalidateClearsEntry(t *testing.T) {
	cache, srv := newRedisFeedCache(t, time.Minute)
	ctx := context.Background()

	var out []string
	_, gen := cache.Get(ctx, &out)
	cache.Set(ctx, gen, []string{"a"})
	cache.Invalidate(ctx)

	assert.False(t, srv.Exists(services.CacheKeyPrefix+"journals:public"))
	hit, _ := cache.Get(ctx, &out)
	assert.False(t, hit)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix   = "cache:"
	publicFeedKey    = CacheKeyPrefix + "journals:public"
	publicFeedGenKey = CacheKeyPrefix + "journals:public:gen"
)

var errStaleFeed = errors.New("feed generation changed")

// FeedCache holds the rendered public feed between writes.
//
// Every Invalidate bumps a generation counter. A miss reports the generation
// it saw, and Set only stores the value if the counter has not moved since,
// so a feed read before a write can never overwrite the invalidation.
type FeedCache interface {
	// Get decodes the cached feed into dest. On a miss it returns false and
	// the generation to hand to Set.
	Get(ctx context.Context, dest interface{}) (hit bool, gen int64)
	Set(ctx context.Context, gen int64, value interface{})
	Invalidate(ctx context.Context)
}

// NewFeedCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewFeedCache(client *redis.Client, ttl time.Duration, log *zap.Logger) FeedCache {
	if client == nil {
		return noopFeedCache{}
	}
	return &RedisFeedCache{client: client, ttl: ttl, log: log}
}

type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func (c *RedisFeedCache) Get(ctx context.Context, dest interface{}) (bool, int64) {
	// Read the generation first: a write that lands after this point bumps it.
	gen, err := c.generation(ctx, c.client)
	if err != nil {
		c.log.Warn("feed cache generation read failed", zap.Error(err))
		return false, -1
	}

	val, err := c.client.Get(ctx, publicFeedKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("feed cache read failed", zap.Error(err))
		}
		return false, gen
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.log.Warn("feed cache entry undecodable", zap.Error(err))
		return false, gen
	}
	return true, gen
}

func (c *RedisFeedCache) Set(ctx context.Context, gen int64, value interface{}) {
	if gen < 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("feed cache encode failed", zap.Error(err))
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFeed
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, publicFeedKey, data, c.ttl)
			return nil
		})
		return err
	}, publicFeedGenKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFeed), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("feed cache write skipped; feed changed while it was read")
	default:
		c.log.Warn("feed cache write failed", zap.Error(err))
	}
}

func (c *RedisFeedCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, publicFeedGenKey)
		p.Del(ctx, publicFeedKey)
		return nil
	})
	if err != nil {
		c.log.Warn("feed cache invalidate failed", zap.Error(err))
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *RedisFeedCache) generation(ctx context.Context, r stringGetter) (int64, error) {
	gen, err := r.Get(ctx, publicFeedGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

type noopFeedCache struct{}

func (noopFeedCache) Get(context.Context, interface{}) (bool, int64) { return false, 0 }
func (noopFeedCache) Set(context.Context, int64, interface{})        {}
func (noopFeedCache) Invalidate(context.Context)                     {}

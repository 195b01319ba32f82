package watermark

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache maps a preview digest to the key of an already rendered derivative.
type Cache interface {
	Get(ctx context.Context, digest string) (key string, ok bool, err error)
	Set(ctx context.Context, digest, key string, ttl time.Duration) error
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisCache struct {
	rdb    redisKV
	prefix string
}

func NewRedisCache(rdb redisKV) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: "preview:"}
}

func (c *RedisCache) Get(ctx context.Context, digest string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.prefix+digest).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, digest, key string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+digest, key, ttl).Err()
}

// NoCache always misses.
type NoCache struct{}

func (NoCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (NoCache) Set(context.Context, string, string, time.Duration) error { return nil }

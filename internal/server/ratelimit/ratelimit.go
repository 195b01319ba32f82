// Package ratelimit caps how often one actor may run an operation.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/logging"
)

type Limiter interface {
	// Allow returns common.ErrRateLimited once actorID has used up the
	// window for operation.
	Allow(ctx context.Context, actorID, operation string) error
}

// Counter is the subset of *redis.Client the fixed-window limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter is a fixed-window counter: INCR on a key per window, with
// EXPIRE set on the first hit.
type RedisLimiter struct {
	rdb    Counter
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
	log    logging.Logger
}

func NewRedisLimiter(rdb Counter, limit int64, window time.Duration, log logging.Logger) *RedisLimiter {
	return &RedisLimiter{
		log:    log,
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
		now:    time.Now,
	}
}

// Allow fails open when Redis is unreachable.
func (l *RedisLimiter) Allow(ctx context.Context, actorID, operation string) error {
	if l.limit <= 0 {
		return nil
	}

	slot := l.now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("%s:%s:%s:%d", l.prefix, operation, actorID, slot)

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn(ctx, "rate limiter unavailable", "operation", operation, "error", err)
		return nil
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.log.Warn(ctx, "rate limit window expiry not set", "operation", operation, "key", key, "error", err)
		}
	}
	if n > l.limit {
		return fmt.Errorf("%w: %s allows %d per %s", common.ErrRateLimited, operation, l.limit, l.window)
	}
	return nil
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string, string) error { return nil }

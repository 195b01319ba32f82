package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/testkit"
)

type fakeCounter struct {
	counts  map[string]int64
	expires   map[string]time.Duration
	err       error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

func newLimiter(rdb Counter, limit int64, now time.Time) (*RedisLimiter, *testkit.RecordingLogger) {
	log := testkit.NewRecordingLogger()
	l := NewRedisLimiter(rdb, limit, time.Minute, log)
	l.now = func() time.Time { return now }
	return l, log
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	rdb := newFakeCounter()
	now := time.Date(2026, 5, 1, 12, 0, 10, 0, time.UTC)
	l, _ := newLimiter(rdb, 3, now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "c1", "submit_proof"))
	}
	err := l.Allow(ctx, "c1", "submit_proof")
	assert.ErrorIs(t, err, common.ErrRateLimited)

	// other actors and other operations have their own windows
	assert.NoError(t, l.Allow(ctx, "c2", "submit_proof"))
	assert.NoError(t, l.Allow(ctx, "c1", "upload_deliverable"))

	require.Len(t, rdb.expires, 3)
	for _, d := range rdb.expires {
		assert.Equal(t, time.Minute, d)
	}

	// next window starts fresh
	l.now = func() time.Time { return now.Add(time.Minute) }
	assert.NoError(t, l.Allow(ctx, "c1", "submit_proof"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	rdb := newFakeCounter()
	rdb.err = errors.New("connection refused")
	l, log := newLimiter(rdb, 1, time.Now())

	assert.NoError(t, l.Allow(context.Background(), "c1", "submit_proof"))
	assert.NoError(t, l.Allow(context.Background(), "c1", "submit_proof"))
	assert.True(t, log.Has("warn", "rate limiter unavailable"))
}

func TestRedisLimiter_ExpireFailureLogged(t *testing.T) {
	rdb := newFakeCounter()
	rdb.expireErr = errors.New("READONLY")
	l, log := newLimiter(rdb, 1, time.Now())

	require.NoError(t, l.Allow(context.Background(), "c1", "submit_proof"))
	assert.True(t, log.Has("warn", "rate limit window expiry not set"))
	assert.Empty(t, rdb.expires)

	// the window still counts
	assert.ErrorIs(t, l.Allow(context.Background(), "c1", "submit_proof"), common.ErrRateLimited)
}

func TestRedisLimiter_ZeroLimitDisables(t *testing.T) {
	rdb := newFakeCounter()
	l, _ := newLimiter(rdb, 0, time.Now())
	for i := 0; i < 10; i++ {
		assert.NoError(t, l.Allow(context.Background(), "c1", "x"))
	}
	assert.Empty(t, rdb.counts)
}

func TestUnlimited(t *testing.T) {
	assert.NoError(t, Unlimited{}.Allow(context.Background(), "a", "b"))
}

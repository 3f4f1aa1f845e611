package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis 在内存中模拟 SetNX / Incr / Expire / Del
type fakeRedis struct {
	keys    map[string]int64
	ttls    map[string]time.Duration
	failing error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, ttl time.Duration) *redis.BoolCmd {
	if f.failing != nil {
		return redis.NewBoolResult(false, f.failing)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key], f.ttls[key] = 1, ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.keys[key]++
	return redis.NewIntResult(f.keys[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestDeduper(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	d := NewDeduper(rdb, time.Hour, nil)

	assert.True(t, d.AcquireOnce(ctx, "audit", "evt-1"))
	assert.False(t, d.AcquireOnce(ctx, "audit", "evt-1"))
	assert.True(t, d.AcquireOnce(ctx, "audit", "evt-2"))
	assert.Equal(t, time.Hour, rdb.ttls["dedup:audit:evt-1"])

	d.Forget(ctx, "audit", "evt-1")
	assert.True(t, d.AcquireOnce(ctx, "audit", "evt-1"), "forgotten event is processed again")

	rdb.failing = errors.New("dial tcp: connection refused")
	assert.True(t, d.AcquireOnce(ctx, "audit", "evt-1"), "redis outage lets the event through")
}

func TestRetryCounter(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rc := NewRetryCounter(rdb, time.Minute)
	key := FormatRetryKey("audit", "evt-1")
	assert.Equal(t, "retry:audit:evt-1", key)

	n, err := rc.IncrementAndGet(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, rdb.ttls[key])

	n, err = rc.IncrementAndGet(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, rc.Reset(ctx, key))
	n, err = rc.IncrementAndGet(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIsRetryableError(t *testing.T) {
	var js map[string]any
	jsonErr := json.Unmarshal([]byte("{"), &js)

	cases := []struct {
		err       error
		retryable bool
		kind      string
	}{
		{jsonErr, false, "json_decode_error"},
		{fmt.Errorf("load: %w", pgx.ErrNoRows), false, "not_found"},
		{&pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{&pgconn.PgError{Code: "23503"}, false, "constraint_violation"},
		{&pgconn.PgError{Code: "08006"}, true, "db_connection_error"},
		{context.DeadlineExceeded, true, "timeout"},
		{context.Canceled, false, "context_canceled"},
		{errors.New("read: connection reset by peer"), true, "connection_error"},
		{errors.New("boom"), false, "unknown_error"},
	}
	for _, c := range cases {
		retryable, kind := IsRetryableError(c.err)
		assert.Equal(t, c.retryable, retryable, c.kind)
		assert.Equal(t, c.kind, kind)
	}

	assert.True(t, ShouldRetry(3, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(1, 3, false))
}

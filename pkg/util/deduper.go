package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SetNXer 是 Deduper 需要的 redis 子集
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Deduper struct {
	rdb    SetNXer
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb SetNXer, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a given handler + eventID.
// It returns true the first time and false for a duplicate.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, eventID string) bool {
	key := dedupKey(handler, eventID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis 挂了？当 redis 不可用时，不阻止处理，返回 true（下游写入需幂等）
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Forget drops the dedup lock so a redelivered event is processed again.
// 处理失败、消息将被重新投递时调用
func (d *Deduper) Forget(ctx context.Context, handler, eventID string) {
	if err := d.rdb.Del(ctx, dedupKey(handler, eventID)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup lock",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}

func dedupKey(handler, eventID string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, eventID)
}

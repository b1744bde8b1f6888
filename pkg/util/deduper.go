package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper 基于 Redis SETNX 的消息去重，防止重投递的事件被重复处理
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce 尝试为 (handler, messageID) 占据去重位。
// 第一次处理返回 true，重复消息返回 false。
// Redis 不可用时放行：宁可重复处理也不丢消息。
func (d *Deduper) AcquireOnce(ctx context.Context, handler, messageID string) bool {
	if messageID == "" {
		return true
	}
	key := fmt.Sprintf("dedup:%s:%s", handler, messageID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.String("message_id", messageID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("message_id", messageID),
		)
	}

	return ok
}

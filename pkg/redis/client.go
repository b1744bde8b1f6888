package redis

import (
	"github.com/redis/go-redis/v9"

	"habittracker/pkg/config"
)

// NewClient 按配置创建 Redis 客户端，设置存储与消息去重共用
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 所有设置键统一挂在一个前缀下，避免和其他使用者冲突
const redisKeyPrefix = "habit:settings:"

// RedisStore 基于 Redis 的设置存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStoreWithClient 包装一个已建立的 Redis 连接
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("settings get %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("settings set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("settings delete %q: %w", key, err)
	}
	return nil
}

// Ping 就绪探针用
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

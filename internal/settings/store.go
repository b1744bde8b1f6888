// Package settings 提供简单的键值设置存储：
// 功能开关、订阅标记、API Key 覆盖以及周总结缓存。
package settings

import "context"

// 设置键
const (
	KeyReminderEnabled = "reminder_enabled"
	KeyReminderTime    = "reminder_time"
	KeyIsSubscribed    = "is_subscribed"
	KeyAPIKeyOverride  = "openai_key_override"

	weeklySummaryPrefix = "weekly_summary:"
)

// Store 持久化键值存储。Get 对缺失的键返回 ("", nil)。
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// GetBool 读取布尔设置，缺失或读取失败时返回 fallback
func GetBool(ctx context.Context, s Store, key string, fallback bool) bool {
	v, err := s.Get(ctx, key)
	if err != nil || v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

// SetBool 写入布尔设置
func SetBool(ctx context.Context, s Store, key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}
	return s.Set(ctx, key, v)
}

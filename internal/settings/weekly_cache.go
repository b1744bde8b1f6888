package settings

import (
	"context"
	"time"

	"habittracker/internal/dateutil"
)

// WeeklyCache 按周缓存 AI 周总结文本。
// 键为目标周的周一日期；某周数据发生变化时只失效该周的条目。
type WeeklyCache struct {
	store Store
}

func NewWeeklyCache(store Store) *WeeklyCache {
	return &WeeklyCache{store: store}
}

func weeklyKey(t time.Time) string {
	return weeklySummaryPrefix + dateutil.WeekKey(t)
}

// Get 返回 date 所在周的缓存文本，未命中时返回 ("", false)
func (c *WeeklyCache) Get(ctx context.Context, date time.Time) (string, bool) {
	v, err := c.store.Get(ctx, weeklyKey(date))
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Put 缓存 date 所在周的总结文本
func (c *WeeklyCache) Put(ctx context.Context, date time.Time, summary string) error {
	return c.store.Set(ctx, weeklyKey(date), summary)
}

// Invalidate 清除 date 所在周的缓存条目
func (c *WeeklyCache) Invalidate(ctx context.Context, date time.Time) error {
	return c.store.Delete(ctx, weeklyKey(date))
}

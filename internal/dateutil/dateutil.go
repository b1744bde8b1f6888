// Package dateutil 统一自然日与自然周的边界计算。
// 所有统计都按本地时区的自然日分桶，不用 24 小时滚动窗口。
package dateutil

import "time"

const DayFormat = "2006-01-02"

// StartOfDay 返回 t 所在自然日的零点（保留 t 的时区）
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey 返回自然日字符串键，例如 2026-09-01
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// SameDay 判断两个时间是否落在同一自然日（以 a 的时区为准）
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b.In(a.Location()))
}

// WeekStart 返回 t 所在周的周一零点
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	// time.Weekday 以周日为 0，转成周一为起点
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey 返回 t 所在周的键：周一的自然日字符串
func WeekKey(t time.Time) string {
	return DayKey(WeekStart(t))
}

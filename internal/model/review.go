package model

import "time"

// Review 每日复盘：自由文本 + 可选 AI 建议，同一自然日至多一条
type Review struct {
	ID           int       `json:"id"`
	Date         time.Time `json:"date"`
	Text         string    `json:"text,omitempty"`
	AISuggestion string    `json:"ai_suggestion,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AggregateStats 一组习惯的汇总统计
type AggregateStats struct {
	TotalCompletionRate float64 `json:"total_completion_rate"`
	CompletedToday      int     `json:"completed_today"`
	SkippedToday        int     `json:"skipped_today"`
	HabitCount          int     `json:"habit_count"`
}

// AverageRate 平均7日完成率，无习惯时为 0
func (s AggregateStats) AverageRate() float64 {
	if s.HabitCount == 0 {
		return 0
	}
	return s.TotalCompletionRate / float64(s.HabitCount)
}

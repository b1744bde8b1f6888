package model

import "time"

// RecordStatus 单日打卡状态
type RecordStatus int16

const (
	StatusNone      RecordStatus = 0
	StatusCompleted RecordStatus = 1
	StatusSkipped   RecordStatus = 2
)

// Label 返回状态的中文标签（周报提示词用）
func (s RecordStatus) Label() string {
	switch s {
	case StatusCompleted:
		return "今日完成"
	case StatusSkipped:
		return "今日跳过"
	default:
		return "今日未填"
	}
}

// Valid 校验状态取值
func (s RecordStatus) Valid() bool {
	return s == StatusNone || s == StatusCompleted || s == StatusSkipped
}

// DailyRecord 一条习惯在某个自然日的打卡记录
// 约束：同一 (habit_id, date) 至多一条，按自然键 upsert
type DailyRecord struct {
	ID        int          `json:"id"`
	HabitID   int          `json:"habit_id"`
	Date      time.Time    `json:"date"`
	Status    RecordStatus `json:"status"`
	Note      string       `json:"note,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

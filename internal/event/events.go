// Package event 定义发布到 habit.events exchange 的领域事件。
// 这些事件是状态变化的对外通知通道，发布失败不阻塞业务写入。
package event

import "time"

// 路由键
const (
	HabitCreated        = "habit.created"
	HabitDeleted        = "habit.deleted"
	RecordUpserted      = "record.upserted"
	ReviewUpserted      = "review.upserted"
	SubscriptionChanged = "subscription.changed"
)

type HabitPayload struct {
	HabitID int    `json:"habit_id"`
	Title   string `json:"title"`
}

type RecordPayload struct {
	HabitID int       `json:"habit_id"`
	Date    string    `json:"date"` // YYYY-MM-DD
	Status  int16     `json:"status"`
	At      time.Time `json:"at"`
}

type ReviewPayload struct {
	Date string `json:"date"` // YYYY-MM-DD
}

type SubscriptionPayload struct {
	IsSubscribed bool `json:"is_subscribed"`
}

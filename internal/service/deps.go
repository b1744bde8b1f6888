package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/metrics"
)

// HabitStore 习惯存取
type HabitStore interface {
	Insert(ctx context.Context, title, goalType string) (model.Habit, error)
	List(ctx context.Context) ([]model.Habit, error)
	UpdateTitle(ctx context.Context, id int, title string) error
	Delete(ctx context.Context, id int) error
}

// RecordStore 打卡记录存取，按自然键 upsert
type RecordStore interface {
	Upsert(ctx context.Context, habitID int, day time.Time, status model.RecordStatus, note string) (model.DailyRecord, error)
	ListByHabitBetween(ctx context.Context, habitID int, from, to time.Time) ([]model.DailyRecord, error)
	ListByDate(ctx context.Context, day time.Time) ([]model.DailyRecord, error)
	GetByHabitAndDate(ctx context.Context, habitID int, day time.Time) (*model.DailyRecord, error)
	CompletedDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// ReviewStore 复盘存取，按自然日 upsert
type ReviewStore interface {
	UpsertText(ctx context.Context, day time.Time, text string) (model.Review, error)
	UpsertSuggestion(ctx context.Context, day time.Time, suggestion string) (model.Review, error)
	GetByDate(ctx context.Context, day time.Time) (*model.Review, error)
}

// SubscriptionGate 订阅状态查询
type SubscriptionGate interface {
	IsSubscribed() bool
}

// Generator AI 文本生成调用
type Generator interface {
	FetchSuggestion(ctx context.Context, apiKey, prompt string) (string, error)
}

// EventPublisher 领域事件发布通道
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// publishEvent 尽力发布事件：publisher 可为 nil，失败只记日志，不影响业务写入
func publishEvent(p EventPublisher, logger *zap.Logger, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		metrics.IncrementEventPublish(routingKey, "failed")
		logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return
	}
	metrics.IncrementEventPublish(routingKey, "success")
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/dateutil"
	"habittracker/internal/event"
	"habittracker/internal/model"
	"habittracker/internal/settings"
)

// FreeHabitLimit 免费用户可创建的习惯数量上限
const FreeHabitLimit = 3

// HabitService 习惯与打卡记录的增删改查，含免费版数量限制
type HabitService struct {
	habits    HabitStore
	records   RecordStore
	subs      SubscriptionGate
	cache     *settings.WeeklyCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewHabitService(habits HabitStore, records RecordStore, subs SubscriptionGate, cache *settings.WeeklyCache, publisher EventPublisher, logger *zap.Logger) *HabitService {
	return &HabitService{
		habits:    habits,
		records:   records,
		subs:      subs,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create 新建习惯：标题非空、不与现有习惯重名（忽略大小写）、免费版数量受限
func (s *HabitService) Create(ctx context.Context, title string) (model.Habit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Habit{}, validationErrorf("习惯标题不能为空")
	}

	existing, err := s.habits.List(ctx)
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to list habits: %w", err)
	}

	for _, h := range existing {
		if strings.EqualFold(h.Title, title) {
			return model.Habit{}, validationErrorf("已存在相同名称的习惯")
		}
	}

	if !s.subs.IsSubscribed() && len(existing) >= FreeHabitLimit {
		return model.Habit{}, validationErrorf("免费用户最多只能创建%d个习惯", FreeHabitLimit)
	}

	habit, err := s.habits.Insert(ctx, title, model.GoalTypeDaily)
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}

	publishEvent(s.publisher, s.logger, event.HabitCreated, event.HabitPayload{
		HabitID: habit.ID,
		Title:   habit.Title,
	})
	return habit, nil
}

// Rename 修改习惯标题，校验与 Create 一致（排除自身）
func (s *HabitService) Rename(ctx context.Context, id int, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return validationErrorf("习惯标题不能为空")
	}

	existing, err := s.habits.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}
	for _, h := range existing {
		if h.ID != id && strings.EqualFold(h.Title, title) {
			return validationErrorf("已存在相同名称的习惯")
		}
	}

	return s.habits.UpdateTitle(ctx, id, title)
}

// Delete 删除习惯，打卡记录级联删除
func (s *HabitService) Delete(ctx context.Context, id int) error {
	if err := s.habits.Delete(ctx, id); err != nil {
		return err
	}

	publishEvent(s.publisher, s.logger, event.HabitDeleted, event.HabitPayload{HabitID: id})
	return nil
}

func (s *HabitService) List(ctx context.Context) ([]model.Habit, error) {
	return s.habits.List(ctx)
}

// UpsertRecord 按 (habit, 自然日) upsert 打卡记录，并失效该周的周总结缓存
func (s *HabitService) UpsertRecord(ctx context.Context, habitID int, date time.Time, status model.RecordStatus, note string) (model.DailyRecord, error) {
	if !status.Valid() {
		return model.DailyRecord{}, validationErrorf("无效的打卡状态")
	}

	day := dateutil.StartOfDay(date)
	rec, err := s.records.Upsert(ctx, habitID, day, status, strings.TrimSpace(note))
	if err != nil {
		return model.DailyRecord{}, fmt.Errorf("failed to upsert record: %w", err)
	}

	if err := s.cache.Invalidate(ctx, day); err != nil {
		s.logger.Warn("Failed to invalidate weekly summary cache", zap.Error(err))
	}

	publishEvent(s.publisher, s.logger, event.RecordUpserted, event.RecordPayload{
		HabitID: rec.HabitID,
		Date:    dateutil.DayKey(day),
		Status:  int16(rec.Status),
		At:      s.now(),
	})
	return rec, nil
}

// RecordsOn 返回某自然日所有习惯的打卡记录（历史视图）
func (s *HabitService) RecordsOn(ctx context.Context, date time.Time) ([]model.DailyRecord, error) {
	return s.records.ListByDate(ctx, dateutil.StartOfDay(date))
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habittracker/internal/model"
)

var statsNow = time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

func newTestStatsService(records *fakeRecordStore) *StatsService {
	svc := NewStatsService(records, zap.NewNop())
	svc.now = func() time.Time { return statsNow }
	return svc
}

func markDay(t *testing.T, records *fakeRecordStore, habitID, daysAgo int, status model.RecordStatus) {
	t.Helper()
	day := statsNow.AddDate(0, 0, -daysAgo)
	_, err := records.Upsert(context.Background(), habitID, day, status, "")
	require.NoError(t, err)
}

func TestCompletionRateNoRecords(t *testing.T) {
	svc := newTestStatsService(newFakeRecordStore())
	assert.Equal(t, 0.0, svc.CompletionRate(context.Background(), 1, 7))
}

func TestCompletionRateFullWeek(t *testing.T) {
	records := newFakeRecordStore()
	for daysAgo := 0; daysAgo < 7; daysAgo++ {
		markDay(t, records, 1, daysAgo, model.StatusCompleted)
	}

	svc := newTestStatsService(records)
	assert.Equal(t, 1.0, svc.CompletionRate(context.Background(), 1, 7))
}

func TestCompletionRateSkippedDoesNotCount(t *testing.T) {
	records := newFakeRecordStore()
	markDay(t, records, 1, 0, model.StatusCompleted)
	markDay(t, records, 1, 1, model.StatusSkipped)
	markDay(t, records, 1, 2, model.StatusCompleted)
	markDay(t, records, 1, 3, model.StatusCompleted)

	svc := newTestStatsService(records)
	assert.InDelta(t, 3.0/7.0, svc.CompletionRate(context.Background(), 1, 7), 1e-9)
}

func TestCompletionRateIgnoresRecordsOutsideWindow(t *testing.T) {
	records := newFakeRecordStore()
	markDay(t, records, 1, 0, model.StatusCompleted)
	markDay(t, records, 1, 7, model.StatusCompleted) // 第8天，窗口外

	svc := newTestStatsService(records)
	assert.InDelta(t, 1.0/7.0, svc.CompletionRate(context.Background(), 1, 7), 1e-9)
}

func TestCompletionRateDegradesOnStoreError(t *testing.T) {
	records := newFakeRecordStore()
	records.err = errors.New("connection refused")

	svc := newTestStatsService(records)
	assert.Equal(t, 0.0, svc.CompletionRate(context.Background(), 1, 7))
}

func TestCurrentStreak(t *testing.T) {
	records := newFakeRecordStore()
	for daysAgo := 0; daysAgo < 6; daysAgo++ {
		markDay(t, records, 1, daysAgo, model.StatusCompleted)
	}
	// 第7天有空档，第8天的完成不应延长连续天数
	markDay(t, records, 1, 7, model.StatusCompleted)

	svc := newTestStatsService(records)
	assert.Equal(t, 6, svc.CurrentStreak(context.Background()))
}

func TestCurrentStreakZeroWhenTodayMissing(t *testing.T) {
	records := newFakeRecordStore()
	markDay(t, records, 1, 1, model.StatusCompleted)
	markDay(t, records, 1, 2, model.StatusCompleted)

	svc := newTestStatsService(records)
	assert.Equal(t, 0, svc.CurrentStreak(context.Background()))
}

func TestCurrentStreakCountsAnyHabit(t *testing.T) {
	records := newFakeRecordStore()
	markDay(t, records, 1, 0, model.StatusCompleted)
	markDay(t, records, 2, 1, model.StatusCompleted)
	markDay(t, records, 3, 2, model.StatusCompleted)

	svc := newTestStatsService(records)
	assert.Equal(t, 3, svc.CurrentStreak(context.Background()))
}

func TestTodayStatus(t *testing.T) {
	records := newFakeRecordStore()
	markDay(t, records, 1, 0, model.StatusSkipped)

	svc := newTestStatsService(records)
	assert.Equal(t, model.StatusSkipped, svc.TodayStatus(context.Background(), 1))
	assert.Equal(t, model.StatusNone, svc.TodayStatus(context.Background(), 2))
}

func TestAggregate(t *testing.T) {
	records := newFakeRecordStore()
	// 习惯1：全勤，今天完成
	for daysAgo := 0; daysAgo < 7; daysAgo++ {
		markDay(t, records, 1, daysAgo, model.StatusCompleted)
	}
	// 习惯2：今天跳过
	markDay(t, records, 2, 0, model.StatusSkipped)

	svc := newTestStatsService(records)
	habits := []model.Habit{{ID: 1, Title: "晨跑"}, {ID: 2, Title: "阅读"}}

	stats := svc.Aggregate(context.Background(), habits)

	assert.Equal(t, 2, stats.HabitCount)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 1, stats.SkippedToday)
	assert.InDelta(t, 1.0, stats.TotalCompletionRate, 1e-9)
	assert.InDelta(t, 0.5, stats.AverageRate(), 1e-9)
}

func TestAggregateEmptyHabits(t *testing.T) {
	svc := newTestStatsService(newFakeRecordStore())

	stats := svc.Aggregate(context.Background(), nil)

	assert.Equal(t, 0, stats.HabitCount)
	assert.Equal(t, 0.0, stats.AverageRate())
}

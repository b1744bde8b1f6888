package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/dateutil"
	"habittracker/internal/model"
)

const (
	// DefaultRateWindowDays 默认完成率统计窗口
	DefaultRateWindowDays = 7

	// maxStreakDays 连续打卡回溯上限，保证回扫必然终止
	maxStreakDays = 3650
)

// StatsService 统计引擎：按本地自然日分桶计算完成率与连续打卡。
// 读库失败按"降级为空"策略处理：记日志并返回零值，不向上传播。
type StatsService struct {
	records RecordStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewStatsService(records RecordStore, logger *zap.Logger) *StatsService {
	return &StatsService{
		records: records,
		logger:  logger,
		now:     time.Now,
	}
}

// CompletionRate 近 days 个自然日（含今天）的完成率。
// 每天只要存在一条 status=completed 的记录就算完成；没有记录的天按未完成计。
func (s *StatsService) CompletionRate(ctx context.Context, habitID int, days int) float64 {
	if days <= 0 {
		days = DefaultRateWindowDays
	}

	end := dateutil.StartOfDay(s.now())
	start := end.AddDate(0, 0, -(days - 1))

	records, err := s.records.ListByHabitBetween(ctx, habitID, start, end)
	if err != nil {
		s.logger.Error("Failed to fetch records for completion rate",
			zap.Int("habit_id", habitID),
			zap.Error(err),
		)
		return 0
	}

	recordByDay := make(map[string]model.DailyRecord, len(records))
	for _, rec := range records {
		recordByDay[dateutil.DayKey(rec.Date)] = rec
	}

	completedDays := 0
	for offset := 0; offset < days; offset++ {
		day := end.AddDate(0, 0, -offset)
		if rec, ok := recordByDay[dateutil.DayKey(day)]; ok && rec.Status == model.StatusCompleted {
			completedDays++
		}
	}

	return float64(completedDays) / float64(days)
}

// CurrentStreak 从今天向前回扫的连续打卡天数。
// 跨所有习惯统计：某天只要任一习惯有完成记录即算打卡；
// 今天没有完成记录时返回 0。回溯上限 maxStreakDays 天。
func (s *StatsService) CurrentStreak(ctx context.Context) int {
	today := dateutil.StartOfDay(s.now())
	from := today.AddDate(0, 0, -(maxStreakDays - 1))

	days, err := s.records.CompletedDays(ctx, from, today)
	if err != nil {
		s.logger.Error("Failed to fetch completed days for streak", zap.Error(err))
		return 0
	}

	completed := make(map[string]bool, len(days))
	for _, d := range days {
		completed[dateutil.DayKey(d)] = true
	}

	streak := 0
	for offset := 0; offset < maxStreakDays; offset++ {
		day := today.AddDate(0, 0, -offset)
		if !completed[dateutil.DayKey(day)] {
			break
		}
		streak++
	}
	return streak
}

// TodayStatus 某习惯今天的打卡状态，无记录或读取失败时为 none
func (s *StatsService) TodayStatus(ctx context.Context, habitID int) model.RecordStatus {
	today := dateutil.StartOfDay(s.now())
	rec, err := s.records.GetByHabitAndDate(ctx, habitID, today)
	if err != nil {
		s.logger.Error("Failed to fetch today record",
			zap.Int("habit_id", habitID),
			zap.Error(err),
		)
		return model.StatusNone
	}
	if rec == nil {
		return model.StatusNone
	}
	return rec.Status
}

// Aggregate 一组习惯的汇总统计：7日完成率之和与今日完成/跳过数量
func (s *StatsService) Aggregate(ctx context.Context, habits []model.Habit) model.AggregateStats {
	stats := model.AggregateStats{HabitCount: len(habits)}

	for _, h := range habits {
		stats.TotalCompletionRate += s.CompletionRate(ctx, h.ID, DefaultRateWindowDays)

		switch s.TodayStatus(ctx, h.ID) {
		case model.StatusCompleted:
			stats.CompletedToday++
		case model.StatusSkipped:
			stats.SkippedToday++
		}
	}
	return stats
}

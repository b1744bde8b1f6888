package service

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/dateutil"
	"habittracker/internal/model"
	"habittracker/internal/openai"
	"habittracker/internal/settings"
	"habittracker/pkg/metrics"
)

// Suggestion 生成结果；Fallback 标记文本来自规则表而非 AI
type Suggestion struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// NoHabitsWeeklyText 无习惯数据时的周总结文案
const NoHabitsWeeklyText = "本周暂无习惯数据"

// SuggestionService 组装提示词并调用文本生成，失败时用规则表降级。
// 同类请求单槽防抖：上一个未完成时拒绝新请求，避免对同一缓存槽的交叠写入。
type SuggestionService struct {
	habits     HabitStore
	stats      *StatsService
	reviews    ReviewStore
	cache      *settings.WeeklyCache
	store      settings.Store
	subs       SubscriptionGate
	generator  Generator
	defaultKey string
	logger     *zap.Logger
	now        func() time.Time

	dailyBusy  atomic.Bool
	weeklyBusy atomic.Bool
}

func NewSuggestionService(
	habits HabitStore,
	stats *StatsService,
	reviews ReviewStore,
	cache *settings.WeeklyCache,
	store settings.Store,
	subs SubscriptionGate,
	generator Generator,
	defaultKey string,
	logger *zap.Logger,
) *SuggestionService {
	return &SuggestionService{
		habits:     habits,
		stats:      stats,
		reviews:    reviews,
		cache:      cache,
		store:      store,
		subs:       subs,
		generator:  generator,
		defaultKey: defaultKey,
		logger:     logger,
		now:        time.Now,
	}
}

// resolveKey 解析当前生效的 API Key：用户覆盖优先，其次构建配置
func (s *SuggestionService) resolveKey(ctx context.Context) string {
	override, err := s.store.Get(ctx, settings.KeyAPIKeyOverride)
	if err != nil {
		s.logger.Warn("Failed to read api key override", zap.Error(err))
		override = ""
	}
	return openai.ResolveKey(override, s.defaultKey)
}

// todayReviewText 今天的复盘文本，读取失败降级为空
func (s *SuggestionService) todayReviewText(ctx context.Context) string {
	rev, err := s.reviews.GetByDate(ctx, dateutil.StartOfDay(s.now()))
	if err != nil || rev == nil {
		return ""
	}
	return rev.Text
}

// listHabits 读库失败按降级为空处理
func (s *SuggestionService) listHabits(ctx context.Context) []model.Habit {
	habits, err := s.habits.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list habits for suggestion", zap.Error(err))
		return nil
	}
	return habits
}

// GenerateDaily 生成今日建议：AI 成功则用 AI 文本，否则用规则表。
// 无论哪条路径都会把结果写入今天的复盘记录，所以总能产出一条建议。
func (s *SuggestionService) GenerateDaily(ctx context.Context) (Suggestion, error) {
	if !s.dailyBusy.CompareAndSwap(false, true) {
		return Suggestion{}, ErrGenerationInProgress
	}
	defer s.dailyBusy.Store(false)

	habits := s.listHabits(ctx)
	stats := s.stats.Aggregate(ctx, habits)
	reviewText := s.todayReviewText(ctx)
	prompt := buildDailyPrompt(stats, reviewText)

	key := s.resolveKey(ctx)
	if key == "" {
		text := dailyFallback(stats.AverageRate(), stats.CompletedToday, stats.HabitCount)
		metrics.IncrementFallbackSuggestion("daily", "missing_key")
		s.logger.Info("No api key configured, using fallback daily suggestion")
		s.saveDailySuggestion(ctx, text)
		return Suggestion{Text: text, Fallback: true}, nil
	}

	text, err := s.generator.FetchSuggestion(ctx, key, prompt)
	if err != nil {
		s.logger.Warn("Daily suggestion generation failed, using fallback", zap.Error(err))
		metrics.IncrementFallbackSuggestion("daily", "generation_failed")
		text = dailyFallback(stats.AverageRate(), stats.CompletedToday, stats.HabitCount)
		s.saveDailySuggestion(ctx, text)
		return Suggestion{Text: text, Fallback: true}, nil
	}

	s.saveDailySuggestion(ctx, text)
	return Suggestion{Text: text}, nil
}

// saveDailySuggestion 把建议写入今天的复盘，并失效本周的周总结缓存
func (s *SuggestionService) saveDailySuggestion(ctx context.Context, text string) {
	today := dateutil.StartOfDay(s.now())
	if _, err := s.reviews.UpsertSuggestion(ctx, today, text); err != nil {
		s.logger.Error("Failed to persist daily suggestion", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, today); err != nil {
		s.logger.Warn("Failed to invalidate weekly summary cache", zap.Error(err))
	}
}

// GenerateWeekly 生成本周总结。
// 免费用户只返回数字完成率；订阅用户走 AI（失败降级规则表），结果按周缓存。
func (s *SuggestionService) GenerateWeekly(ctx context.Context) (Suggestion, error) {
	if !s.weeklyBusy.CompareAndSwap(false, true) {
		return Suggestion{}, ErrGenerationInProgress
	}
	defer s.weeklyBusy.Store(false)

	habits := s.listHabits(ctx)
	if len(habits) == 0 {
		return Suggestion{Text: NoHabitsWeeklyText}, nil
	}

	stats := s.stats.Aggregate(ctx, habits)
	averageRate := stats.AverageRate()

	if !s.subs.IsSubscribed() {
		text := fmt.Sprintf("免费用户仅显示完成率：本周完成率: %d%%。订阅后可生成 AI 周总结。", int(math.Round(averageRate*100)))
		return Suggestion{Text: text}, nil
	}

	lines := make([]string, 0, len(habits))
	for _, h := range habits {
		rate := s.stats.CompletionRate(ctx, h.ID, DefaultRateWindowDays)
		lines = append(lines, habitReportLine(h.Title, rate, s.stats.TodayStatus(ctx, h.ID)))
	}
	report := buildWeeklyReport(lines, averageRate, s.todayReviewText(ctx))

	key := s.resolveKey(ctx)
	if key == "" {
		text := weeklyFallback(averageRate)
		metrics.IncrementFallbackSuggestion("weekly", "missing_key")
		s.logger.Info("No api key configured, using fallback weekly summary")
		s.cacheWeekly(ctx, text)
		return Suggestion{Text: text, Fallback: true}, nil
	}

	text, err := s.generator.FetchSuggestion(ctx, key, report)
	if err != nil {
		s.logger.Warn("Weekly summary generation failed, using fallback", zap.Error(err))
		metrics.IncrementFallbackSuggestion("weekly", "generation_failed")
		text = weeklyFallback(averageRate)
		s.cacheWeekly(ctx, text)
		return Suggestion{Text: text, Fallback: true}, nil
	}

	s.cacheWeekly(ctx, text)
	return Suggestion{Text: text}, nil
}

func (s *SuggestionService) cacheWeekly(ctx context.Context, text string) {
	if err := s.cache.Put(ctx, s.now(), text); err != nil {
		s.logger.Warn("Failed to cache weekly summary", zap.Error(err))
	}
}

// CachedWeekly 返回本周已缓存的总结
func (s *SuggestionService) CachedWeekly(ctx context.Context) (string, bool) {
	return s.cache.Get(ctx, s.now())
}

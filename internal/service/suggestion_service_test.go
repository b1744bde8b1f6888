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
	"habittracker/internal/settings"
)

type suggestionFixture struct {
	svc       *SuggestionService
	habits    *fakeHabitStore
	records   *fakeRecordStore
	reviews   *fakeReviewStore
	store     *settings.MemoryStore
	cache     *settings.WeeklyCache
	gate      *fakeGate
	generator *fakeGenerator
}

func newSuggestionFixture(defaultKey string) *suggestionFixture {
	f := &suggestionFixture{
		habits:    newFakeHabitStore(),
		records:   newFakeRecordStore(),
		reviews:   newFakeReviewStore(),
		store:     settings.NewMemoryStore(),
		gate:      &fakeGate{subscribed: true},
		generator: &fakeGenerator{text: "AI 建议"},
	}
	f.cache = settings.NewWeeklyCache(f.store)

	stats := NewStatsService(f.records, zap.NewNop())
	stats.now = func() time.Time { return statsNow }

	f.svc = NewSuggestionService(f.habits, stats, f.reviews, f.cache, f.store, f.gate, f.generator, defaultKey, zap.NewNop())
	f.svc.now = func() time.Time { return statsNow }
	return f
}

func TestGenerateDailyWithAI(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)

	got, err := f.svc.GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AI 建议", got.Text)
	assert.False(t, got.Fallback)

	// 建议写入今天的复盘记录
	rev, err := f.reviews.GetByDate(context.Background(), statsNow)
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, "AI 建议", rev.AISuggestion)
}

func TestGenerateDailyMissingKeyFallsBack(t *testing.T) {
	f := newSuggestionFixture("")

	got, err := f.svc.GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.True(t, got.Fallback)
	assert.NotEmpty(t, got.Text)
	assert.Equal(t, 0, f.generator.calls)

	// 降级文案同样落库
	rev, err := f.reviews.GetByDate(context.Background(), statsNow)
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, got.Text, rev.AISuggestion)
}

func TestGenerateDailyGeneratorErrorFallsBack(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.generator.err = errors.New("upstream timeout")

	got, err := f.svc.GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.True(t, got.Fallback)
	assert.NotEmpty(t, got.Text)
}

func TestGenerateDailyPromptContent(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)
	markDay(t, f.records, 1, 0, model.StatusCompleted)
	_, err := f.reviews.UpsertText(context.Background(), statsNow, "状态不错")
	require.NoError(t, err)

	_, err = f.svc.GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.Contains(t, f.generator.lastPrompt, "已完成 1 / 1")
	assert.Contains(t, f.generator.lastPrompt, "今日复盘：状态不错")
	assert.Contains(t, f.generator.lastPrompt, "不要复述输入")
}

func TestGenerateDailyRejectsConcurrentRequest(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.generator.started = make(chan struct{})
	f.generator.release = make(chan struct{})

	firstDone := make(chan Suggestion, 1)
	go func() {
		got, err := f.svc.GenerateDaily(context.Background())
		assert.NoError(t, err)
		firstDone <- got
	}()

	<-f.generator.started

	// 第一个请求还卡在生成里，第二个必须被拒绝
	_, err := f.svc.GenerateDaily(context.Background())
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(f.generator.release)
	got := <-firstDone
	assert.Equal(t, "AI 建议", got.Text)

	// 第一个完成后槽位释放
	_, err = f.svc.GenerateDaily(context.Background())
	require.NoError(t, err)
}

func TestGenerateWeeklyNoHabits(t *testing.T) {
	f := newSuggestionFixture("sk-test")

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, NoHabitsWeeklyText, got.Text)
	assert.Equal(t, 0, f.generator.calls)

	// 空数据文案不进缓存
	_, ok := f.svc.CachedWeekly(context.Background())
	assert.False(t, ok)
}

func TestGenerateWeeklyFreeUserGetsRateOnly(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.gate.subscribed = false
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)
	for daysAgo := 0; daysAgo < 7; daysAgo++ {
		markDay(t, f.records, 1, daysAgo, model.StatusCompleted)
	}

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "免费用户仅显示完成率：本周完成率: 100%。订阅后可生成 AI 周总结。", got.Text)
	assert.Equal(t, 0, f.generator.calls)

	_, ok := f.svc.CachedWeekly(context.Background())
	assert.False(t, ok)
}

func TestGenerateWeeklyFreeUserRoundsRate(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.gate.subscribed = false
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)
	// 7 天完成 6 天，6/7 ≈ 85.7%，显示四舍五入后的 86%
	for daysAgo := 0; daysAgo < 6; daysAgo++ {
		markDay(t, f.records, 1, daysAgo, model.StatusCompleted)
	}

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "免费用户仅显示完成率：本周完成率: 86%。订阅后可生成 AI 周总结。", got.Text)
}

func TestGenerateWeeklyCachesResult(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.generator.text = "本周总结文本"
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "本周总结文本", got.Text)

	cached, ok := f.svc.CachedWeekly(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "本周总结文本", cached)

	assert.Contains(t, f.generator.lastPrompt, "- 晨跑: 7日完成率")
}

func TestGenerateWeeklyFallbackIsCached(t *testing.T) {
	f := newSuggestionFixture("sk-test")
	f.generator.err = errors.New("rate limited")
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Fallback)

	cached, ok := f.svc.CachedWeekly(context.Background())
	assert.True(t, ok)
	assert.Equal(t, got.Text, cached)
}

func TestResolveKeyPrefersOverride(t *testing.T) {
	f := newSuggestionFixture("sk-build-default-key-123")
	require.NoError(t, f.store.Set(context.Background(), settings.KeyAPIKeyOverride, "sk-user-override-key-456"))

	assert.Equal(t, "sk-user-override-key-456", f.svc.resolveKey(context.Background()))

	require.NoError(t, f.store.Delete(context.Background(), settings.KeyAPIKeyOverride))
	assert.Equal(t, "sk-build-default-key-123", f.svc.resolveKey(context.Background()))
}

func TestDailyFallbackTiers(t *testing.T) {
	cases := []struct {
		name           string
		rate           float64
		completed      int
		total          int
		wantSubstr     string
		wantExactMatch string
	}{
		{name: "高完成率全部完成", rate: 0.9, completed: 3, total: 3, wantExactMatch: "太棒了！今天所有习惯都完成了，继续保持这个完美的节奏！"},
		{name: "高完成率还有剩余", rate: 0.9, completed: 2, total: 3, wantSubstr: "100%"},
		{name: "中完成率已开始", rate: 0.45, completed: 1, total: 3, wantSubstr: "不错的开始"},
		{name: "中完成率未开始", rate: 0.6, completed: 0, total: 3, wantSubstr: "今天还没开始"},
		{name: "低完成率已开始", rate: 0.1, completed: 1, total: 3, wantSubstr: "至少完成了一个习惯"},
		{name: "低完成率未开始", rate: 0.1, completed: 0, total: 3, wantSubstr: "重新开始总是需要勇气"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := dailyFallback(tc.rate, tc.completed, tc.total)
			if tc.wantExactMatch != "" {
				assert.Equal(t, tc.wantExactMatch, got)
			} else {
				assert.Contains(t, got, tc.wantSubstr)
			}

			// 纯函数：相同输入结果稳定
			assert.Equal(t, got, dailyFallback(tc.rate, tc.completed, tc.total))
		})
	}
}

func TestWeeklyFallbackTiers(t *testing.T) {
	assert.Contains(t, weeklyFallback(0.9), "本周完成率很高")
	assert.Contains(t, weeklyFallback(0.5), "本周有一定进展")
	assert.Contains(t, weeklyFallback(0.2), "本周完成度偏低")
}

func TestBuildDailyPromptPlaceholders(t *testing.T) {
	prompt := buildDailyPrompt(model.AggregateStats{}, "  ")

	// 没有习惯时分母按 1 处理，空复盘用占位符
	assert.Contains(t, prompt, "已完成 0 / 1")
	assert.Contains(t, prompt, "今日复盘：无")
}

func TestBuildWeeklyReport(t *testing.T) {
	lines := []string{
		habitReportLine("晨跑", 0.75, model.StatusCompleted),
		habitReportLine("阅读", 0.25, model.StatusNone),
	}
	report := buildWeeklyReport(lines, 0.5, "")

	assert.Contains(t, report, "整体7日平均完成率：50%")
	assert.Contains(t, report, "- 晨跑: 7日完成率 75%，今日完成")
	assert.Contains(t, report, "- 阅读: 7日完成率 25%，今日未填")
	assert.Contains(t, report, "本周复盘摘录：本周暂无特别复盘")
}

func TestGenerateWeeklySummaryMentionsAverage(t *testing.T) {
	f := newSuggestionFixture("")
	f.habits.Insert(context.Background(), "晨跑", model.GoalTypeDaily)
	for daysAgo := 0; daysAgo < 7; daysAgo++ {
		markDay(t, f.records, 1, daysAgo, model.StatusCompleted)
	}

	got, err := f.svc.GenerateWeekly(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Equal(t, weeklyFallback(1.0), got.Text)
}

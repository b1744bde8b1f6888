package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habittracker/internal/event"
	"habittracker/internal/settings"
)

func newTestReviewService(reviews *fakeReviewStore, publisher *fakePublisher) (*ReviewService, *settings.WeeklyCache) {
	cache := settings.NewWeeklyCache(settings.NewMemoryStore())
	// 避免把带类型的 nil *fakePublisher 塞进接口，导致 publishEvent 的 nil 判断失效
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewReviewService(reviews, cache, pub, zap.NewNop()), cache
}

func TestSaveReview(t *testing.T) {
	reviews := newFakeReviewStore()
	publisher := &fakePublisher{}
	svc, _ := newTestReviewService(reviews, publisher)

	day := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)

	rev, err := svc.Save(context.Background(), day, "  今天状态不错  ")
	require.NoError(t, err)
	assert.Equal(t, "今天状态不错", rev.Text)
	assert.Equal(t, []string{event.ReviewUpserted}, publisher.routingKeys())

	// 同一天重复保存覆盖文本，且不丢失已写入的 AI 建议
	_, err = reviews.UpsertSuggestion(context.Background(), day, "试试早点睡")
	require.NoError(t, err)

	rev2, err := svc.Save(context.Background(), day, "改主意了")
	require.NoError(t, err)
	assert.Equal(t, rev.ID, rev2.ID)
	assert.Equal(t, "改主意了", rev2.Text)
	assert.Equal(t, "试试早点睡", rev2.AISuggestion)
}

func TestSaveReviewTooLong(t *testing.T) {
	svc, _ := newTestReviewService(newFakeReviewStore(), nil)

	// 201 个汉字，按字符数而不是字节数计
	text := strings.Repeat("好", MaxReviewLength+1)

	_, err := svc.Save(context.Background(), time.Now(), text)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "复盘内容不能超过200个字符")
}

func TestSaveReviewExactLimit(t *testing.T) {
	svc, _ := newTestReviewService(newFakeReviewStore(), nil)

	text := strings.Repeat("好", MaxReviewLength)

	_, err := svc.Save(context.Background(), time.Now(), text)
	require.NoError(t, err)
}

func TestSaveReviewInvalidatesWeeklyCache(t *testing.T) {
	svc, cache := newTestReviewService(newFakeReviewStore(), nil)

	day := time.Date(2026, 9, 2, 20, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Put(context.Background(), day, "cached"))

	_, err := svc.Save(context.Background(), day, "复盘一下")
	require.NoError(t, err)

	_, ok := cache.Get(context.Background(), day)
	assert.False(t, ok)
}

func TestGetReviewMissing(t *testing.T) {
	svc, _ := newTestReviewService(newFakeReviewStore(), nil)

	rev, err := svc.Get(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, rev)
}

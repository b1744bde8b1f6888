package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"habittracker/internal/dateutil"
	"habittracker/internal/event"
	"habittracker/internal/model"
	"habittracker/internal/settings"
)

// MaxReviewLength 复盘文本长度上限（字符数）
const MaxReviewLength = 200

// ReviewService 每日复盘的读写
type ReviewService struct {
	reviews   ReviewStore
	cache     *settings.WeeklyCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewReviewService(reviews ReviewStore, cache *settings.WeeklyCache, publisher EventPublisher, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Save 按自然日 upsert 复盘文本；超长直接拒绝，不产生部分写入
func (s *ReviewService) Save(ctx context.Context, date time.Time, text string) (model.Review, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxReviewLength {
		return model.Review{}, validationErrorf("复盘内容不能超过%d个字符", MaxReviewLength)
	}

	day := dateutil.StartOfDay(date)
	rev, err := s.reviews.UpsertText(ctx, day, text)
	if err != nil {
		return model.Review{}, fmt.Errorf("failed to save review: %w", err)
	}

	if err := s.cache.Invalidate(ctx, day); err != nil {
		s.logger.Warn("Failed to invalidate weekly summary cache", zap.Error(err))
	}

	publishEvent(s.publisher, s.logger, event.ReviewUpserted, event.ReviewPayload{
		Date: dateutil.DayKey(day),
	})
	return rev, nil
}

// Get 返回某自然日的复盘，不存在时为 (nil, nil)
func (s *ReviewService) Get(ctx context.Context, date time.Time) (*model.Review, error) {
	return s.reviews.GetByDate(ctx, dateutil.StartOfDay(date))
}

// Today 返回今天的复盘
func (s *ReviewService) Today(ctx context.Context) (*model.Review, error) {
	return s.Get(ctx, s.now())
}

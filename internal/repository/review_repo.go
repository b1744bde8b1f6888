package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habittracker/internal/model"
)

type ReviewRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReviewRepository(db *pgxpool.Pool, logger *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertText 按自然日 upsert 复盘文本，保留已有的 AI 建议
func (r *ReviewRepository) UpsertText(ctx context.Context, day time.Time, text string) (model.Review, error) {
	query := `
        INSERT INTO reviews (date, text, updated_at)
        VALUES ($1, NULLIF($2, ''), NOW())
        ON CONFLICT (date)
        DO UPDATE SET text = EXCLUDED.text, updated_at = NOW()
        RETURNING id, date, COALESCE(text, ''), COALESCE(ai_suggestion, ''), updated_at
    `
	var rev model.Review
	err := r.db.QueryRow(ctx, query, day, text).Scan(
		&rev.ID,
		&rev.Date,
		&rev.Text,
		&rev.AISuggestion,
		&rev.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert review text", zap.Time("date", day), zap.Error(err))
		return model.Review{}, err
	}

	r.logger.Info("Review upserted", zap.Int("id", rev.ID), zap.Time("date", day))
	return rev, nil
}

// UpsertSuggestion 按自然日 upsert AI 建议，保留已有的复盘文本
func (r *ReviewRepository) UpsertSuggestion(ctx context.Context, day time.Time, suggestion string) (model.Review, error) {
	query := `
        INSERT INTO reviews (date, ai_suggestion, updated_at)
        VALUES ($1, NULLIF($2, ''), NOW())
        ON CONFLICT (date)
        DO UPDATE SET ai_suggestion = EXCLUDED.ai_suggestion, updated_at = NOW()
        RETURNING id, date, COALESCE(text, ''), COALESCE(ai_suggestion, ''), updated_at
    `
	var rev model.Review
	err := r.db.QueryRow(ctx, query, day, suggestion).Scan(
		&rev.ID,
		&rev.Date,
		&rev.Text,
		&rev.AISuggestion,
		&rev.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert review suggestion", zap.Time("date", day), zap.Error(err))
		return model.Review{}, err
	}
	return rev, nil
}

// GetByDate 返回某自然日的复盘，不存在时返回 (nil, nil)
func (r *ReviewRepository) GetByDate(ctx context.Context, day time.Time) (*model.Review, error) {
	query := `
        SELECT id, date, COALESCE(text, ''), COALESCE(ai_suggestion, ''), updated_at
        FROM reviews
        WHERE date = $1
    `

	var rev model.Review
	err := r.db.QueryRow(ctx, query, day).Scan(
		&rev.ID,
		&rev.Date,
		&rev.Text,
		&rev.AISuggestion,
		&rev.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get review", zap.Time("date", day), zap.Error(err))
		return nil, err
	}
	return &rev, nil
}

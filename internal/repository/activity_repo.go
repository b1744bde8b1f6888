package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ActivityRepository 记录 worker 消费到的领域事件，作为简单审计流水
type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Insert(ctx context.Context, eventType string, payload json.RawMessage) error {
	query := `
        INSERT INTO activity_log (event_type, payload)
        VALUES ($1, $2)
    `
	if _, err := r.db.Exec(ctx, query, eventType, payload); err != nil {
		r.logger.Error("Failed to insert activity", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	r.logger.Debug("Activity recorded", zap.String("event_type", eventType))
	return nil
}

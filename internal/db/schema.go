package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// 启动时幂等建表。单机部署，无需外部迁移工具。
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS habits (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		goal_type TEXT NOT NULL DEFAULT 'daily',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_records (
		id SERIAL PRIMARY KEY,
		habit_id INT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		status SMALLINT NOT NULL DEFAULT 0,
		note TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (habit_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_records_date ON daily_records (date)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id SERIAL PRIMARY KEY,
		date DATE NOT NULL UNIQUE,
		text TEXT,
		ai_suggestion TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id SERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			logger.Error("Failed to apply schema statement", zap.Error(err))
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Database schema ensured")
	return nil
}

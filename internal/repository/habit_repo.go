package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habittracker/internal/model"
)

// ErrNotFound 目标行不存在
var ErrNotFound = errors.New("not found")

type HabitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHabitRepository(db *pgxpool.Pool, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HabitRepository) Insert(ctx context.Context, title, goalType string) (model.Habit, error) {
	r.logger.Debug("Inserting habit",
		zap.String("title", title),
		zap.String("goal_type", goalType),
	)

	query := `
        INSERT INTO habits (title, goal_type)
        VALUES ($1, $2)
        RETURNING id, title, goal_type, created_at
    `
	var h model.Habit
	err := r.db.QueryRow(ctx, query, title, goalType).Scan(
		&h.ID,
		&h.Title,
		&h.GoalType,
		&h.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return model.Habit{}, err
	}

	r.logger.Info("Habit inserted successfully",
		zap.Int("id", h.ID),
		zap.String("title", h.Title),
	)
	return h, nil
}

func (r *HabitRepository) List(ctx context.Context) ([]model.Habit, error) {
	query := `
        SELECT id, title, goal_type, created_at
        FROM habits
        ORDER BY created_at ASC, id ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		var h model.Habit
		if err := rows.Scan(&h.ID, &h.Title, &h.GoalType, &h.CreatedAt); err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, err
		}
		habits = append(habits, h)
	}

	r.logger.Debug("Listed habits", zap.Int("count", len(habits)))
	return habits, nil
}

func (r *HabitRepository) UpdateTitle(ctx context.Context, id int, title string) error {
	tag, err := r.db.Exec(ctx, `UPDATE habits SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		r.logger.Error("Failed to update habit title", zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Info("Habit title updated", zap.Int("id", id), zap.String("title", title))
	return nil
}

// Delete removes a habit; daily records cascade at the schema level.
func (r *HabitRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete habit", zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Info("Habit deleted", zap.Int("id", id))
	return nil
}

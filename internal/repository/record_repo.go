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

type RecordRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRecordRepository(db *pgxpool.Pool, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert 按自然键 (habit_id, date) 创建或更新打卡记录
func (r *RecordRepository) Upsert(ctx context.Context, habitID int, day time.Time, status model.RecordStatus, note string) (model.DailyRecord, error) {
	r.logger.Debug("Upserting daily record",
		zap.Int("habit_id", habitID),
		zap.Time("date", day),
		zap.Int16("status", int16(status)),
	)

	query := `
        INSERT INTO daily_records (habit_id, date, status, note, updated_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
        ON CONFLICT (habit_id, date)
        DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = NOW()
        RETURNING id, habit_id, date, status, COALESCE(note, ''), updated_at
    `
	var rec model.DailyRecord
	err := r.db.QueryRow(ctx, query, habitID, day, int16(status), note).Scan(
		&rec.ID,
		&rec.HabitID,
		&rec.Date,
		&rec.Status,
		&rec.Note,
		&rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert daily record",
			zap.Int("habit_id", habitID),
			zap.Error(err),
		)
		return model.DailyRecord{}, err
	}

	r.logger.Info("Daily record upserted",
		zap.Int("id", rec.ID),
		zap.Int("habit_id", rec.HabitID),
		zap.Int16("status", int16(rec.Status)),
	)
	return rec, nil
}

// ListByHabitBetween 返回某习惯在 [from, to] 闭区间内的记录，按日期升序
func (r *RecordRepository) ListByHabitBetween(ctx context.Context, habitID int, from, to time.Time) ([]model.DailyRecord, error) {
	query := `
        SELECT id, habit_id, date, status, COALESCE(note, ''), updated_at
        FROM daily_records
        WHERE habit_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date ASC
    `

	rows, err := r.db.Query(ctx, query, habitID, from, to)
	if err != nil {
		r.logger.Error("Failed to list daily records", zap.Int("habit_id", habitID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByDate 返回某个自然日所有习惯的记录
func (r *RecordRepository) ListByDate(ctx context.Context, day time.Time) ([]model.DailyRecord, error) {
	query := `
        SELECT id, habit_id, date, status, COALESCE(note, ''), updated_at
        FROM daily_records
        WHERE date = $1
        ORDER BY habit_id ASC
    `

	rows, err := r.db.Query(ctx, query, day)
	if err != nil {
		r.logger.Error("Failed to list daily records by date", zap.Time("date", day), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByHabitAndDate 返回某习惯某日的记录，不存在时返回 (nil, nil)
func (r *RecordRepository) GetByHabitAndDate(ctx context.Context, habitID int, day time.Time) (*model.DailyRecord, error) {
	query := `
        SELECT id, habit_id, date, status, COALESCE(note, ''), updated_at
        FROM daily_records
        WHERE habit_id = $1 AND date = $2
    `

	var rec model.DailyRecord
	err := r.db.QueryRow(ctx, query, habitID, day).Scan(
		&rec.ID,
		&rec.HabitID,
		&rec.Date,
		&rec.Status,
		&rec.Note,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get daily record",
			zap.Int("habit_id", habitID),
			zap.Time("date", day),
			zap.Error(err),
		)
		return nil, err
	}
	return &rec, nil
}

// CompletedDays 返回区间内至少有一条完成记录的自然日（跨所有习惯），升序
func (r *RecordRepository) CompletedDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	query := `
        SELECT DISTINCT date
        FROM daily_records
        WHERE status = $1 AND date >= $2 AND date <= $3
        ORDER BY date ASC
    `

	rows, err := r.db.Query(ctx, query, int16(model.StatusCompleted), from, to)
	if err != nil {
		r.logger.Error("Failed to list completed days", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			r.logger.Error("Failed to scan completed day", zap.Error(err))
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func scanRecords(rows pgx.Rows) ([]model.DailyRecord, error) {
	var records []model.DailyRecord
	for rows.Next() {
		var rec model.DailyRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.HabitID,
			&rec.Date,
			&rec.Status,
			&rec.Note,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

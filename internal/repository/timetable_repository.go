package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hasan197668/nis/internal/models"
)

// TimetableRepository persists the weekly per-teacher lesson table.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns the stored timetables in import order.
func (r *TimetableRepository) List(ctx context.Context) ([]models.TeacherTimetable, error) {
	const query = `SELECT teacher_name, schedule, position, updated_at FROM teacher_timetables ORDER BY position, teacher_name`
	var rows []models.TeacherTimetable
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list teacher timetables: %w", err)
	}
	return rows, nil
}

// Replace swaps the whole table for the given rows within one transaction.
func (r *TimetableRepository) Replace(ctx context.Context, rows []models.TeacherTimetable) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable replace tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_timetables`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear teacher timetables: %w", err)
	}
	const query = `INSERT INTO teacher_timetables (teacher_name, schedule, position, updated_at)
VALUES (:teacher_name, :schedule, :position, :updated_at)`
	now := time.Now().UTC()
	for i := range rows {
		rows[i].Position = i
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert timetable for %s: %w", rows[i].TeacherName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable replace tx: %w", err)
	}
	return nil
}

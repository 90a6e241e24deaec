package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hasan197668/nis/internal/models"
)

// DutyRepository persists the weekly duty table.
type DutyRepository struct {
	db *sqlx.DB
}

// NewDutyRepository constructs the repository.
func NewDutyRepository(db *sqlx.DB) *DutyRepository {
	return &DutyRepository{db: db}
}

// List returns every duty assignment in import order.
func (r *DutyRepository) List(ctx context.Context) ([]models.DutyAssignment, error) {
	const query = `SELECT id, day, location, teacher_name, position, updated_at FROM duty_assignments ORDER BY position, id`
	var rows []models.DutyAssignment
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list duty assignments: %w", err)
	}
	return rows, nil
}

// Replace swaps the whole duty table within one transaction.
func (r *DutyRepository) Replace(ctx context.Context, rows []models.DutyAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin duty replace tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM duty_assignments`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear duty assignments: %w", err)
	}
	const query = `INSERT INTO duty_assignments (day, location, teacher_name, position, updated_at)
VALUES (:day, :location, :teacher_name, :position, :updated_at)`
	now := time.Now().UTC()
	for i := range rows {
		rows[i].Position = i
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert duty assignment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit duty replace tx: %w", err)
	}
	return nil
}

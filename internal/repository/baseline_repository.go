package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hasan197668/nis/internal/models"
)

// BaselineRepository persists the seed substitution counts.
type BaselineRepository struct {
	db *sqlx.DB
}

// NewBaselineRepository constructs the repository.
func NewBaselineRepository(db *sqlx.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// List returns all baseline counts ordered by name.
func (r *BaselineRepository) List(ctx context.Context) ([]models.BaselineCount, error) {
	const query = `SELECT name, substitute_count, updated_at FROM baseline_counts ORDER BY name`
	var rows []models.BaselineCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list baseline counts: %w", err)
	}
	return rows, nil
}

// Replace swaps the baseline table. Duplicate names keep the last value.
func (r *BaselineRepository) Replace(ctx context.Context, rows []models.BaselineCount) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin baseline replace tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM baseline_counts`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear baseline counts: %w", err)
	}
	const query = `INSERT INTO baseline_counts (name, substitute_count, updated_at)
VALUES (:name, :substitute_count, :updated_at)
ON CONFLICT (name) DO UPDATE SET substitute_count = EXCLUDED.substitute_count, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert baseline count for %s: %w", rows[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit baseline replace tx: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hasan197668/nis/internal/models"
)

// HistoryRepository is the append-only substitution log.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores a committed batch atomically. Records already present are
// left untouched.
func (r *HistoryRepository) Append(ctx context.Context, records []models.SubstitutionRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history append tx: %w", err)
	}
	const query = `INSERT INTO substitution_records (id, date, day, lesson_label, absent_teacher_name, substitute_teacher_name, "timestamp", created_at)
VALUES (:id, :date, :day, :lesson_label, :absent_teacher_name, :substitute_teacher_name, :timestamp, :created_at)
ON CONFLICT (id) DO NOTHING`
	now := time.Now().UTC()
	for i := range records {
		records[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append substitution record %s: %w", records[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history append tx: %w", err)
	}
	return nil
}

// List returns a page of records, newest first, and the total match count.
func (r *HistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.SubstitutionRecord, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if filter.Teacher != "" {
		args = append(args, filter.Teacher)
		conditions = append(conditions, fmt.Sprintf("(absent_teacher_name = $%d OR substitute_teacher_name = $%d)", len(args), len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conditions = append(conditions, fmt.Sprintf(`"timestamp" >= $%d`, len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM substitution_records`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count substitution records: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT id, date, day, lesson_label, absent_teacher_name, substitute_teacher_name, "timestamp", created_at
FROM substitution_records%s ORDER BY "timestamp" DESC, id LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	records := make([]models.SubstitutionRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list substitution records: %w", err)
	}
	return records, total, nil
}

// CountBySubstitute returns the lifetime substitution count per teacher.
func (r *HistoryRepository) CountBySubstitute(ctx context.Context) ([]models.SubstituteCount, error) {
	const query = `SELECT substitute_teacher_name AS name, COUNT(*) AS count FROM substitution_records GROUP BY substitute_teacher_name`
	counts := make([]models.SubstituteCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count substitutions per teacher: %w", err)
	}
	return counts, nil
}

// CountSince ranks substitutes by records stamped at or after since (unix ms)
// and returns the total number of those records.
func (r *HistoryRepository) CountSince(ctx context.Context, since int64) ([]models.SubstituteCount, int, error) {
	const query = `SELECT substitute_teacher_name AS name, COUNT(*) AS count FROM substitution_records
WHERE "timestamp" >= $1 GROUP BY substitute_teacher_name ORDER BY count DESC, name`
	counts := make([]models.SubstituteCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, 0, fmt.Errorf("rank substitutes: %w", err)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return counts, total, nil
}

// Reset purges the whole log and returns the number of removed records.
func (r *HistoryRepository) Reset(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM substitution_records`)
	if err != nil {
		return 0, fmt.Errorf("reset substitution records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset substitution records: %w", err)
	}
	return affected, nil
}

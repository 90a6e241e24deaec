package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
	"github.com/Hasan197668/nis/pkg/cache"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
)

type historyStore interface {
	Append(ctx context.Context, records []models.SubstitutionRecord) error
	List(ctx context.Context, filter models.HistoryFilter) ([]models.SubstitutionRecord, int, error)
	CountBySubstitute(ctx context.Context) ([]models.SubstituteCount, error)
	CountSince(ctx context.Context, since int64) ([]models.SubstituteCount, int, error)
	Reset(ctx context.Context) (int64, error)
}

const (
	defaultHistoryPageSize = 50
	statsCachePattern      = "stats:*"
)

// HistoryService exposes the substitution log and the statistics derived from it.
type HistoryService struct {
	repo      historyStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewHistoryService constructs the service. cache may be nil.
func NewHistoryService(repo historyStore, cacheSvc *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *HistoryService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		repo:      repo,
		cache:     cacheSvc,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Record appends a committed batch and drops cached statistics.
func (s *HistoryService) Record(ctx context.Context, records []substitution.SubstitutionRecord) error {
	rows := make([]models.SubstitutionRecord, len(records))
	for i, r := range records {
		rows[i] = models.NewSubstitutionRecord(r)
	}
	if err := s.repo.Append(ctx, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store substitution history")
	}
	s.cache.Invalidate(ctx, cache.Key(statsCachePattern))
	return nil
}

// List pages through the history, newest first.
func (s *HistoryService) List(ctx context.Context, query dto.HistoryQuery) ([]models.SubstitutionRecord, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query")
	}
	filter := models.HistoryFilter{
		Teacher:  substitution.NormalizeName(query.Teacher),
		Since:    query.Since,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultHistoryPageSize
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list substitution history")
	}
	return records, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Counts returns the lifetime substitution count per teacher, keyed by the
// normalised name.
func (s *HistoryService) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.repo.CountBySubstitute(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count substitutions")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[substitution.NormalizeName(row.Name)] += row.Count
	}
	return counts, nil
}

// Leaderboard ranks substitutes over the rolling window of period. Ties are
// ordered alphabetically.
func (s *HistoryService) Leaderboard(ctx context.Context, query dto.LeaderboardQuery) (*models.Leaderboard, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leaderboard query")
	}
	period := models.LeaderboardPeriod(query.Period)
	if period == "" {
		period = models.LeaderboardWeekly
	}

	key := cache.Key("stats", "leaderboard", string(period))
	var cached models.Leaderboard
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	now := s.now().UTC()
	since := now.Add(-period.Window()).UnixMilli()
	entries, total, err := s.repo.CountSince(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build leaderboard")
	}
	collator := collate.New(language.Turkish)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return collator.CompareString(entries[i].Name, entries[j].Name) < 0
	})

	board := &models.Leaderboard{
		Period:       period,
		Since:        since,
		TotalRecords: total,
		Entries:      entries,
		GeneratedAt:  now,
	}
	s.cache.Set(ctx, key, board, s.cacheTTL)
	return board, nil
}

// Reset purges the whole history log.
func (s *HistoryService) Reset(ctx context.Context) (int64, error) {
	removed, err := s.repo.Reset(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset substitution history")
	}
	s.cache.Invalidate(ctx, cache.Key(statsCachePattern))
	s.logger.Warn("substitution history reset", zap.Int64("removed", removed))
	return removed, nil
}

package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/importer"
	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
)

type timetableStore interface {
	List(ctx context.Context) ([]models.TeacherTimetable, error)
	Replace(ctx context.Context, rows []models.TeacherTimetable) error
}

type dutyStore interface {
	List(ctx context.Context) ([]models.DutyAssignment, error)
	Replace(ctx context.Context, rows []models.DutyAssignment) error
}

type baselineStore interface {
	List(ctx context.Context) ([]models.BaselineCount, error)
	Replace(ctx context.Context, rows []models.BaselineCount) error
}

// PlanningInputs are the weekly tables a roster is derived from.
type PlanningInputs struct {
	Timetables []substitution.TeacherTimetable
	Duties     []substitution.DutyAssignment
	Baseline   map[string]int
	// Fallback lists the baseline teachers, used when no table names anyone.
	Fallback []string
}

// TableService manages the weekly timetable, the duty table and the baseline
// substitution counts.
type TableService struct {
	timetables timetableStore
	duties     dutyStore
	baseline   baselineStore
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewTableService constructs the service.
func NewTableService(timetables timetableStore, duties dutyStore, baseline baselineStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TableService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableService{
		timetables: timetables,
		duties:     duties,
		baseline:   baseline,
		validator:  validate,
		metrics:    metrics,
		logger:     logger,
	}
}

// Timetables returns the stored weekly timetable.
func (s *TableService) Timetables(ctx context.Context) ([]models.TeacherTimetable, error) {
	rows, err := s.timetables.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}
	return rows, nil
}

// ReplaceTimetables validates and stores a new weekly timetable. Names are
// normalised and the first row of a teacher wins.
func (s *TableService) ReplaceTimetables(ctx context.Context, req dto.ReplaceTimetablesRequest) (*dto.TableWriteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	parsed := make([]substitution.TeacherTimetable, 0, len(req.Timetables))
	for _, row := range req.Timetables {
		schedule := make(map[string][]string, len(row.Schedule))
		for rawDay, cells := range row.Schedule {
			day, _ := substitution.ParseWeekDay(rawDay)
			schedule[string(day)] = padCells(cells)
		}
		parsed = append(parsed, substitution.TeacherTimetable{TeacherName: row.TeacherName, Schedule: schedule})
	}
	return s.storeTimetables(ctx, parsed, 0, nil)
}

// ImportTimetable replaces the timetable with the content of an xlsx workbook.
func (s *TableService) ImportTimetable(ctx context.Context, r io.Reader) (*dto.TableWriteResponse, error) {
	result, err := importer.ParseTimetable(r)
	if err != nil {
		return nil, importError(err, "timetable")
	}
	return s.storeTimetables(ctx, result.Timetables, result.Skipped, result.Duplicates)
}

func (s *TableService) storeTimetables(ctx context.Context, parsed []substitution.TeacherTimetable, skipped int, duplicates []string) (*dto.TableWriteResponse, error) {
	seen := make(map[string]struct{}, len(parsed))
	rows := make([]models.TeacherTimetable, 0, len(parsed))
	for _, tt := range parsed {
		name := substitution.NormalizeName(tt.TeacherName)
		if name == "" {
			skipped++
			continue
		}
		if _, dup := seen[name]; dup {
			duplicates = append(duplicates, name)
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, models.TeacherTimetable{TeacherName: name, Schedule: models.WeeklySchedule(tt.Schedule)})
	}
	if err := s.timetables.Replace(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetables")
	}
	s.metrics.ObserveImport("timetables", len(rows))
	s.logger.Info("timetable replaced", zap.Int("teachers", len(rows)), zap.Int("skipped", skipped), zap.Strings("duplicates", duplicates))
	return &dto.TableWriteResponse{Stored: len(rows), Skipped: skipped, Duplicates: duplicates}, nil
}

// Duties returns the stored duty table.
func (s *TableService) Duties(ctx context.Context) ([]models.DutyAssignment, error) {
	rows, err := s.duties.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duties")
	}
	return rows, nil
}

// ReplaceDuties validates and stores a new duty table.
func (s *TableService) ReplaceDuties(ctx context.Context, req dto.ReplaceDutiesRequest) (*dto.TableWriteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}
	parsed := make([]substitution.DutyAssignment, 0, len(req.Duties))
	for _, row := range req.Duties {
		day, _ := substitution.ParseWeekDay(row.Day)
		parsed = append(parsed, substitution.DutyAssignment{Day: string(day), Location: row.Location, TeacherName: row.TeacherName})
	}
	return s.storeDuties(ctx, parsed, nil)
}

// ImportDuties replaces the duty table with the content of an xlsx workbook.
func (s *TableService) ImportDuties(ctx context.Context, r io.Reader) (*dto.TableWriteResponse, error) {
	result, err := importer.ParseDuties(r)
	if err != nil {
		return nil, importError(err, "duty table")
	}
	resp, err := s.storeDuties(ctx, result.Duties, result.UnknownDays)
	if err != nil {
		return nil, err
	}
	resp.Locations = result.Locations
	return resp, nil
}

func (s *TableService) storeDuties(ctx context.Context, parsed []substitution.DutyAssignment, unknownDays []string) (*dto.TableWriteResponse, error) {
	rows := make([]models.DutyAssignment, 0, len(parsed))
	locations := make(map[string]struct{})
	for _, duty := range parsed {
		name := substitution.NormalizeName(duty.TeacherName)
		if name == "" {
			continue
		}
		location := strings.TrimSpace(duty.Location)
		rows = append(rows, models.DutyAssignment{Day: duty.Day, Location: location, TeacherName: name})
		locations[location] = struct{}{}
	}
	if err := s.duties.Replace(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store duties")
	}
	s.metrics.ObserveImport("duties", len(rows))
	s.logger.Info("duty table replaced", zap.Int("assignments", len(rows)), zap.Int("locations", len(locations)), zap.Strings("unknown_days", unknownDays))

	names := make([]string, 0, len(locations))
	for loc := range locations {
		names = append(names, loc)
	}
	sort.Strings(names)
	return &dto.TableWriteResponse{Stored: len(rows), Locations: names, UnknownDays: unknownDays}, nil
}

// Baseline returns the stored baseline counts.
func (s *TableService) Baseline(ctx context.Context) ([]models.BaselineCount, error) {
	rows, err := s.baseline.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load baseline counts")
	}
	return rows, nil
}

// ReplaceBaseline stores new baseline counts. A repeated name keeps its last count.
func (s *TableService) ReplaceBaseline(ctx context.Context, req dto.ReplaceBaselineRequest) (*dto.TableWriteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid baseline payload")
	}
	index := make(map[string]int, len(req.Baseline))
	rows := make([]models.BaselineCount, 0, len(req.Baseline))
	for _, row := range req.Baseline {
		name := substitution.NormalizeName(row.Name)
		if i, ok := index[name]; ok {
			rows[i].SubstituteCount = row.SubstituteCount
			continue
		}
		index[name] = len(rows)
		rows = append(rows, models.BaselineCount{Name: name, SubstituteCount: row.SubstituteCount})
	}
	if err := s.baseline.Replace(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store baseline counts")
	}
	s.metrics.ObserveImport("baseline", len(rows))
	return &dto.TableWriteResponse{Stored: len(rows)}, nil
}

// Inputs loads every table in the shape the roster builder expects.
func (s *TableService) Inputs(ctx context.Context) (*PlanningInputs, error) {
	timetables, err := s.Timetables(ctx)
	if err != nil {
		return nil, err
	}
	duties, err := s.Duties(ctx)
	if err != nil {
		return nil, err
	}
	baseline, err := s.Baseline(ctx)
	if err != nil {
		return nil, err
	}

	in := &PlanningInputs{
		Timetables: make([]substitution.TeacherTimetable, len(timetables)),
		Duties:     make([]substitution.DutyAssignment, len(duties)),
		Baseline:   make(map[string]int, len(baseline)),
		Fallback:   make([]string, 0, len(baseline)),
	}
	for i, tt := range timetables {
		in.Timetables[i] = tt.Domain()
	}
	for i, duty := range duties {
		in.Duties[i] = duty.Domain()
	}
	for _, b := range baseline {
		name := substitution.NormalizeName(b.Name)
		in.Baseline[name] = b.SubstituteCount
		in.Fallback = append(in.Fallback, name)
	}
	return in, nil
}

func padCells(cells []string) []string {
	out := make([]string, substitution.HoursPerDay)
	copy(out, cells)
	return out
}

func importError(err error, what string) error {
	if errors.Is(err, importer.ErrEmptyWorkbook) {
		return appErrors.Clone(appErrors.ErrValidation, what+" workbook is empty")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read "+what+" workbook")
}

package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/logger"
)

type planningInputs interface {
	Inputs(ctx context.Context) (*PlanningInputs, error)
}

type historyLedger interface {
	Counts(ctx context.Context) (map[string]int, error)
	Record(ctx context.Context, records []substitution.SubstitutionRecord) error
}

type sheetPublisher interface {
	ShareText(sheet DailySheet) string
	Render(format string, sheet DailySheet) (*ExportFile, error)
	Archive(ctx context.Context, commitID string, sheet DailySheet) (*dto.ReportLink, error)
	Share(ctx context.Context, text string) (string, error)
}

// PlanningService drives planning sessions: marking absences and duty
// overrides, running the assignment engine, manual edits and commits.
type PlanningService struct {
	sessions  SessionStore
	tables    planningInputs
	history   historyLedger
	reports   sheetPublisher
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time

	// mu serialises read-modify-write cycles on sessions.
	mu sync.Mutex
}

// NewPlanningService constructs the service. location is the school timezone
// used for "today" and calendar dates.
func NewPlanningService(sessions SessionStore, tables planningInputs, history historyLedger, reports sheetPublisher, validate *validator.Validate, metrics *MetricsService, log *zap.Logger, location *time.Location) *PlanningService {
	if validate == nil {
		validate = NewValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &PlanningService{
		sessions:  sessions,
		tables:    tables,
		history:   history,
		reports:   reports,
		validator: validate,
		metrics:   metrics,
		logger:    log,
		location:  location,
		now:       time.Now,
	}
}

func (s *PlanningService) clock() time.Time {
	return s.now().In(s.location)
}

// Open starts a new session for the requested day, today by default.
func (s *PlanningService) Open(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	now := s.clock()
	day := substitution.TodayWeekDay(now)
	if req.Day != "" {
		day, _ = substitution.ParseWeekDay(req.Day)
	}
	session := models.PlanningSession{
		ID:            uuid.NewString(),
		Day:           day,
		WeekOffset:    req.WeekOffset,
		Absences:      make([]models.Absence, 0),
		DutyOverrides: make(map[string]substitution.DutyOverride),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.logger).Info("planning session opened", zap.String("session_id", session.ID), zap.String("day", string(day)))
	return s.view(ctx, session)
}

// Get returns the session with its derived roster.
func (s *PlanningService) Get(ctx context.Context, id string) (*dto.SessionView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

// SetDay moves the session to another day. Absences, duty overrides and the
// plan belong to a day and are cleared.
func (s *PlanningService) SetDay(ctx context.Context, id string, req dto.SetDayRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day payload")
	}
	day, _ := substitution.ParseWeekDay(req.Day)
	return s.mutate(ctx, id, func(session *models.PlanningSession, _ substitution.Roster) error {
		if session.Day == day {
			return nil
		}
		session.Day = day
		session.Absences = make([]models.Absence, 0)
		session.DutyOverrides = make(map[string]substitution.DutyOverride)
		session.Plan = nil
		return nil
	})
}

// SetWeekOffset changes the week the session plans for. The plan is kept;
// only duty rotation and dates follow the new week.
func (s *PlanningService) SetWeekOffset(ctx context.Context, id string, req dto.SetWeekRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week payload")
	}
	return s.mutate(ctx, id, func(session *models.PlanningSession, _ substitution.Roster) error {
		session.WeekOffset = req.WeekOffset
		return nil
	})
}

// ToggleAbsence marks or unmarks a teacher as absent. Unmarking drops the reason.
func (s *PlanningService) ToggleAbsence(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}
	teacherID := substitution.NormalizeName(req.TeacherID)
	return s.mutate(ctx, id, func(session *models.PlanningSession, roster substitution.Roster) error {
		if _, ok := roster.Find(teacherID); !ok {
			return appErrors.Clone(appErrors.ErrUnknownTeacher, "teacher "+teacherID+" is not on the roster")
		}
		for i, absence := range session.Absences {
			if absence.TeacherID == teacherID {
				session.Absences = append(session.Absences[:i], session.Absences[i+1:]...)
				for _, cells := range session.Plan {
					delete(cells, teacherID)
				}
				return nil
			}
		}
		session.Absences = append(session.Absences, models.Absence{TeacherID: teacherID})
		return nil
	})
}

// SetReason records the excuse of an absent teacher. An empty reason clears it.
func (s *PlanningService) SetReason(ctx context.Context, id string, req dto.SetReasonRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reason payload")
	}
	teacherID := substitution.NormalizeName(req.TeacherID)
	return s.mutate(ctx, id, func(session *models.PlanningSession, _ substitution.Roster) error {
		for i := range session.Absences {
			if session.Absences[i].TeacherID == teacherID {
				session.Absences[i].Reason = models.AbsenceReason(req.Reason)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrValidation, "teacher "+teacherID+" is not marked absent")
	})
}

// ToggleDuty flips a teacher's duty status for the day: a teacher currently on
// duty is forced off, anyone else is forced on.
func (s *PlanningService) ToggleDuty(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}
	teacherID := substitution.NormalizeName(req.TeacherID)
	return s.mutate(ctx, id, func(session *models.PlanningSession, roster substitution.Roster) error {
		entry, ok := roster.Find(teacherID)
		if !ok {
			return appErrors.Clone(appErrors.ErrUnknownTeacher, "teacher "+teacherID+" is not on the roster")
		}
		if session.DutyOverrides == nil {
			session.DutyOverrides = make(map[string]substitution.DutyOverride)
		}
		if entry.IsOnDuty {
			session.DutyOverrides[teacherID] = substitution.DutyForcedOff
		} else {
			session.DutyOverrides[teacherID] = substitution.DutyForcedOn
		}
		return nil
	})
}

// Execute runs the assignment engine and replaces the session plan.
func (s *PlanningService) Execute(ctx context.Context, id string) (*dto.SessionView, error) {
	log := logger.FromContext(ctx, s.logger)
	return s.mutate(ctx, id, func(session *models.PlanningSession, roster substitution.Roster) error {
		absent := session.AbsentIDs()
		if len(absent) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "mark at least one absent teacher before planning")
		}
		session.Plan = substitution.Assign(roster, absent)
		covered, uncovered := session.Plan.Counts()
		s.metrics.ObservePlanningRun(uncovered)
		log.Info("substitution plan executed",
			zap.String("session_id", session.ID),
			zap.String("day", string(session.Day)),
			zap.Strings("absent", absent),
			zap.Int("covered", covered),
			zap.Int("uncovered", uncovered),
		)
		return nil
	})
}

// SetCell overrides one cell of the plan. Conflicts are allowed; the operator
// sees them through the candidate list.
func (s *PlanningService) SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan cell payload")
	}
	if _, ok := substitution.HourByID(req.HourID); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lesson hour "+req.HourID)
	}
	absentID := substitution.NormalizeName(req.AbsentID)
	sub := substitution.Uncovered
	if req.SubstituteID != nil {
		sub = substitution.NormalizeName(*req.SubstituteID)
	}
	return s.mutate(ctx, id, func(session *models.PlanningSession, roster substitution.Roster) error {
		if session.Plan == nil {
			return appErrors.ErrPlanNotExecuted
		}
		if _, ok := session.Absence(absentID); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "teacher "+absentID+" is not marked absent")
		}
		if sub != substitution.Uncovered {
			if _, ok := roster.Find(sub); !ok {
				return appErrors.Clone(appErrors.ErrUnknownTeacher, "teacher "+sub+" is not on the roster")
			}
		}
		session.Plan = substitution.SetCell(session.Plan, req.HourID, absentID, sub)
		return nil
	})
}

// Candidates lists the teachers that could take over a cell with their
// conflict status.
func (s *PlanningService) Candidates(ctx context.Context, id string, query dto.CandidateQuery) ([]dto.CandidateView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate query")
	}
	hour, ok := substitution.HourByID(query.HourID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lesson hour "+query.HourID)
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster(ctx, session)
	if err != nil {
		return nil, err
	}
	candidates := substitution.Candidates(roster, session.Plan, hour, substitution.NormalizeName(query.AbsentID), query.Search)
	out := make([]dto.CandidateView, len(candidates))
	for i, c := range candidates {
		view := dto.CandidateView{ID: c.ID, Name: c.Name, IsOnDuty: c.IsOnDuty, Status: c.Status}
		if !c.FreeAt(hour.Index) {
			view.Lesson = c.DailySchedule[hour.Index]
		}
		out[i] = view
	}
	return out, nil
}

// Commit writes the covered cells of the plan to history and queues the
// archived daily sheet.
func (s *PlanningService) Commit(ctx context.Context, id string) (*dto.CommitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx, s.logger)
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Plan == nil {
		return nil, appErrors.ErrPlanNotExecuted
	}
	roster, err := s.roster(ctx, session)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	date := substitution.CalendarDate(now, session.Day, session.WeekOffset)
	result := substitution.Commit(session.Plan, roster, session.AbsentIDs(), session.Day, date.Format(substitution.RecordDateLayout), now)
	for _, skipped := range result.Skipped {
		log.Warn("plan cell skipped at commit",
			zap.String("session_id", session.ID),
			zap.String("hour_id", skipped.HourID),
			zap.String("absent_id", skipped.AbsentID),
			zap.String("substitute_id", skipped.SubstituteID),
			zap.String("reason", skipped.Reason),
		)
	}
	if err := s.history.Record(ctx, result.Records); err != nil {
		return nil, err
	}
	s.metrics.ObserveCommit(len(result.Records), len(result.Skipped))

	commitID := strconv.FormatInt(now.UnixMilli(), 10)
	resp := &dto.CommitResponse{
		CommitID: commitID,
		Records:  make([]models.SubstitutionRecord, len(result.Records)),
		Skipped:  result.Skipped,
	}
	for i, r := range result.Records {
		resp.Records[i] = models.NewSubstitutionRecord(r)
	}

	link, err := s.reports.Archive(ctx, commitID, s.sheet(session, roster, date))
	if err != nil {
		log.Warn("daily sheet not archived", zap.String("session_id", session.ID), zap.Error(err))
	} else {
		resp.Report = link
	}

	session.LastCommitID = commitID
	session.UpdatedAt = now.UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Warn("session not updated after commit", zap.String("session_id", session.ID), zap.Error(err))
	}
	log.Info("substitution plan committed", zap.String("session_id", session.ID), zap.String("commit_id", commitID), zap.Int("records", len(result.Records)), zap.Int("skipped", len(result.Skipped)))
	return resp, nil
}

// ShareText renders the plan as a chat message.
func (s *PlanningService) ShareText(ctx context.Context, id string) (string, error) {
	sheet, err := s.loadSheet(ctx, id)
	if err != nil {
		return "", err
	}
	return s.reports.ShareText(*sheet), nil
}

// Share posts the chat message to the staff channel in the background.
func (s *PlanningService) Share(ctx context.Context, id string) (*dto.ShareResponse, error) {
	text, err := s.ShareText(ctx, id)
	if err != nil {
		return nil, err
	}
	jobID, err := s.reports.Share(ctx, text)
	if err != nil {
		return nil, err
	}
	return &dto.ShareResponse{JobID: jobID, Text: text}, nil
}

// Export renders the daily sheet as csv or pdf.
func (s *PlanningService) Export(ctx context.Context, id, format string) (*ExportFile, error) {
	sheet, err := s.loadSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reports.Render(format, *sheet)
}

func (s *PlanningService) loadSheet(ctx context.Context, id string) (*DailySheet, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Plan == nil {
		return nil, appErrors.ErrPlanNotExecuted
	}
	roster, err := s.roster(ctx, session)
	if err != nil {
		return nil, err
	}
	sheet := s.sheet(session, roster, substitution.CalendarDate(s.clock(), session.Day, session.WeekOffset))
	return &sheet, nil
}

func (s *PlanningService) sheet(session models.PlanningSession, roster substitution.Roster, date time.Time) DailySheet {
	reasons := make(map[string]models.AbsenceReason, len(session.Absences))
	for _, a := range session.Absences {
		if a.Reason != models.AbsenceNone {
			reasons[a.TeacherID] = a.Reason
		}
	}
	return DailySheet{
		Day:     session.Day,
		Date:    date,
		Plan:    session.Plan,
		Roster:  roster,
		Absent:  session.AbsentIDs(),
		Reasons: reasons,
	}
}

// mutate applies fn to the stored session under the service lock and saves it.
func (s *PlanningService) mutate(ctx context.Context, id string, fn func(*models.PlanningSession, substitution.Roster) error) (*dto.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := fn(&session, roster); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.clock().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

func (s *PlanningService) roster(ctx context.Context, session models.PlanningSession) (substitution.Roster, error) {
	roster, _, err := s.load(ctx, session)
	return roster, err
}

// load derives the session roster from the stored tables and history.
func (s *PlanningService) load(ctx context.Context, session models.PlanningSession) (substitution.Roster, *PlanningInputs, error) {
	in, err := s.tables.Inputs(ctx)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.history.Counts(ctx)
	if err != nil {
		return nil, nil, err
	}
	roster := substitution.BuildRoster(substitution.RosterInput{
		Day:        session.Day,
		Week:       substitution.RotationWeek(s.clock(), session.WeekOffset),
		Timetables: in.Timetables,
		Duties:     in.Duties,
		Overrides:  session.DutyOverrides,
		Baseline:   in.Baseline,
		History:    counts,
		Fallback:   in.Fallback,
	})
	return roster, in, nil
}

func (s *PlanningService) view(ctx context.Context, session models.PlanningSession) (*dto.SessionView, error) {
	roster, in, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	now := s.clock()

	view := &dto.SessionView{
		ID:            session.ID,
		Day:           session.Day,
		WeekOffset:    session.WeekOffset,
		Week:          substitution.RotationWeek(now, session.WeekOffset),
		Date:          substitution.DateForDay(now, session.Day, session.WeekOffset),
		DutyLocations: substitution.DutyLocations(session.Day, in.Duties),
		Absences:      session.Absences,
		Roster:        make([]dto.RosterEntryView, len(roster)),
		LastCommitID:  session.LastCommitID,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
	for i, entry := range roster {
		absence, absent := session.Absence(entry.ID)
		view.Roster[i] = dto.RosterEntryView{
			RosterEntry:  entry,
			IsAbsent:     absent,
			Reason:       absence.Reason,
			DutyOverride: session.DutyOverrides[entry.ID],
		}
	}

	if session.Plan != nil {
		view.Plan = planView(session, roster)
		covered, uncovered := session.Plan.Counts()
		view.Summary = &dto.PlanSummary{Covered: covered, Uncovered: uncovered}
	}
	return view, nil
}

func planView(session models.PlanningSession, roster substitution.Roster) []dto.PlanHourView {
	hours := substitution.LessonHours()
	out := make([]dto.PlanHourView, 0, len(hours))
	for _, hour := range hours {
		cells := session.Plan[hour.ID]
		hv := dto.PlanHourView{HourID: hour.ID, Label: hour.Label, Cells: make([]dto.PlanCellView, 0, len(cells))}
		for _, absentID := range orderCells(cells, session.AbsentIDs()) {
			cell := dto.PlanCellView{AbsentID: absentID}
			if entry, ok := roster.Find(absentID); ok && hour.Index < len(entry.DailySchedule) {
				cell.Lesson = entry.DailySchedule[hour.Index]
			}
			if sub := cells[absentID]; sub != substitution.Uncovered {
				cell.SubstituteID = &sub
			}
			hv.Cells = append(hv.Cells, cell)
		}
		out = append(out, hv)
	}
	return out
}

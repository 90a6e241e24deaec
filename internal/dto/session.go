package dto

import (
	"time"

	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
)

// OpenSessionRequest starts a planning session. An empty day selects today.
type OpenSessionRequest struct {
	Day        string `json:"day" validate:"omitempty,weekday"`
	WeekOffset int    `json:"weekOffset" validate:"min=-52,max=52"`
}

// SetDayRequest changes the planned day.
type SetDayRequest struct {
	Day string `json:"day" validate:"required,weekday"`
}

// SetWeekRequest moves the session to another week relative to the current one.
type SetWeekRequest struct {
	WeekOffset int `json:"weekOffset" validate:"min=-52,max=52"`
}

// TeacherRequest names the teacher a toggle applies to.
type TeacherRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
}

// SetReasonRequest records the excuse of an absent teacher.
type SetReasonRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Reason    string `json:"reason" validate:"absencereason"`
}

// SetCellRequest overrides one plan cell. A null substitute leaves the hour uncovered.
type SetCellRequest struct {
	HourID       string  `json:"hourId" validate:"required"`
	AbsentID     string  `json:"absentId" validate:"required"`
	SubstituteID *string `json:"substituteId"`
}

// CandidateQuery narrows the editor candidate list.
type CandidateQuery struct {
	HourID   string `form:"hourId" validate:"required"`
	AbsentID string `form:"absentId" validate:"required"`
	Search   string `form:"q"`
}

// RosterEntryView is a roster row annotated with the session's marks.
type RosterEntryView struct {
	substitution.RosterEntry
	IsAbsent     bool                      `json:"isAbsent"`
	Reason       models.AbsenceReason      `json:"reason,omitempty"`
	DutyOverride substitution.DutyOverride `json:"dutyOverride"`
}

// PlanCellView is one (hour, absentee) cell. A nil substitute is uncovered.
type PlanCellView struct {
	AbsentID     string  `json:"absentId"`
	Lesson       string  `json:"lesson"`
	SubstituteID *string `json:"substituteId"`
}

// PlanHourView groups the cells of one lesson hour.
type PlanHourView struct {
	HourID string         `json:"hourId"`
	Label  string         `json:"label"`
	Cells  []PlanCellView `json:"cells"`
}

// PlanSummary counts the cells of an executed plan.
type PlanSummary struct {
	Covered   int `json:"covered"`
	Uncovered int `json:"uncovered"`
}

// SessionView is the full state of a planning session as shown to the operator.
type SessionView struct {
	ID            string               `json:"id"`
	Day           substitution.WeekDay `json:"day"`
	WeekOffset    int                  `json:"weekOffset"`
	Week          int                  `json:"week"`
	Date          string               `json:"date"`
	DutyLocations []string             `json:"dutyLocations"`
	Absences      []models.Absence     `json:"absences"`
	Roster        []RosterEntryView    `json:"roster"`
	Plan          []PlanHourView       `json:"plan"`
	Summary       *PlanSummary         `json:"summary,omitempty"`
	LastCommitID  string               `json:"lastCommitId,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// CandidateView is a teacher offered for a manual plan edit.
type CandidateView struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	IsOnDuty bool                  `json:"isOnDuty"`
	Lesson   string                `json:"lesson,omitempty"`
	Status   substitution.Conflict `json:"status"`
}

// ReportLink points at the archived daily sheet of a commit.
type ReportLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CommitResponse is returned after a plan is written to history.
type CommitResponse struct {
	CommitID string                      `json:"commitId"`
	Records  []models.SubstitutionRecord `json:"records"`
	Skipped  []substitution.SkippedCell  `json:"skipped,omitempty"`
	Report   *ReportLink                 `json:"report,omitempty"`
}

// ShareTextResponse carries the message for messaging apps.
type ShareTextResponse struct {
	Text string `json:"text"`
}

// ShareResponse reports a queued channel post.
type ShareResponse struct {
	JobID string `json:"jobId"`
	Text  string `json:"text"`
}

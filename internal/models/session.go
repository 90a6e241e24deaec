package models

import (
	"time"

	"github.com/Hasan197668/nis/internal/substitution"
)

// AbsenceReason is the excuse recorded for an absent teacher.
type AbsenceReason string

const (
	AbsenceNone         AbsenceReason = ""
	AbsenceSickLeave    AbsenceReason = "Raporlu"
	AbsenceReferral     AbsenceReason = "Sevkli"
	AbsenceLeave        AbsenceReason = "İzinli"
	AbsenceDutyLeave    AbsenceReason = "Görevli İzinli"
	AbsenceExternalDuty AbsenceReason = "Dış Görev"
)

// AbsenceReasons lists the selectable reasons in display order.
func AbsenceReasons() []AbsenceReason {
	return []AbsenceReason{AbsenceSickLeave, AbsenceReferral, AbsenceLeave, AbsenceDutyLeave, AbsenceExternalDuty}
}

// Valid reports whether r is empty or one of the known reasons.
func (r AbsenceReason) Valid() bool {
	if r == AbsenceNone {
		return true
	}
	for _, known := range AbsenceReasons() {
		if r == known {
			return true
		}
	}
	return false
}

// Absence marks a teacher as absent for the session's day.
type Absence struct {
	TeacherID string        `json:"teacherId"`
	Reason    AbsenceReason `json:"reason,omitempty"`
}

// PlanningSession is the state of one operator's planning for a day. It is
// replaced as a whole on every change.
type PlanningSession struct {
	ID            string                               `json:"id"`
	Day           substitution.WeekDay                 `json:"day"`
	WeekOffset    int                                  `json:"weekOffset"`
	Absences      []Absence                            `json:"absences"`
	DutyOverrides map[string]substitution.DutyOverride `json:"dutyOverrides"`
	Plan          substitution.Plan                    `json:"plan"`
	LastCommitID  string                               `json:"lastCommitId,omitempty"`
	CreatedAt     time.Time                            `json:"createdAt"`
	UpdatedAt     time.Time                            `json:"updatedAt"`
}

// AbsentIDs returns the absent teacher ids in marking order.
func (s PlanningSession) AbsentIDs() []string {
	ids := make([]string, len(s.Absences))
	for i, a := range s.Absences {
		ids[i] = a.TeacherID
	}
	return ids
}

// Absence returns the absence entry for id.
func (s PlanningSession) Absence(id string) (Absence, bool) {
	for _, a := range s.Absences {
		if a.TeacherID == id {
			return a, true
		}
	}
	return Absence{}, false
}

// Clone returns a deep copy so stored sessions are never shared.
func (s PlanningSession) Clone() PlanningSession {
	out := s
	out.Absences = append([]Absence(nil), s.Absences...)
	out.DutyOverrides = make(map[string]substitution.DutyOverride, len(s.DutyOverrides))
	for k, v := range s.DutyOverrides {
		out.DutyOverrides[k] = v
	}
	out.Plan = s.Plan.Clone()
	return out
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hasan197668/nis/internal/substitution"
)

// WeeklySchedule maps a day name to its lesson cells, persisted as JSONB.
type WeeklySchedule map[string][]string

// Value marshals the schedule to JSON for persistence.
func (s WeeklySchedule) Value() (driver.Value, error) {
	if s == nil {
		s = WeeklySchedule{}
	}
	data, err := json.Marshal(map[string][]string(s))
	if err != nil {
		return nil, fmt.Errorf("marshal weekly schedule: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON column into the schedule.
func (s *WeeklySchedule) Scan(value interface{}) error {
	if value == nil {
		*s = WeeklySchedule{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for WeeklySchedule", value)
	}
	out := WeeklySchedule{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("unmarshal weekly schedule: %w", err)
		}
	}
	*s = out
	return nil
}

// TeacherTimetable is a stored row of the weekly timetable.
type TeacherTimetable struct {
	TeacherName string         `db:"teacher_name" json:"teacherName"`
	Schedule    WeeklySchedule `db:"schedule" json:"schedule"`
	Position    int            `db:"position" json:"-"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Domain converts the stored row into the planning input.
func (t TeacherTimetable) Domain() substitution.TeacherTimetable {
	return substitution.TeacherTimetable{TeacherName: t.TeacherName, Schedule: map[string][]string(t.Schedule)}
}

// DutyAssignment is a stored row of the duty table.
type DutyAssignment struct {
	ID          int64     `db:"id" json:"-"`
	Day         string    `db:"day" json:"day"`
	Location    string    `db:"location" json:"location"`
	TeacherName string    `db:"teacher_name" json:"teacherName"`
	Position    int       `db:"position" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Domain converts the stored row into the planning input.
func (d DutyAssignment) Domain() substitution.DutyAssignment {
	return substitution.DutyAssignment{Day: d.Day, Location: d.Location, TeacherName: d.TeacherName}
}

// BaselineCount is a stored lifetime substitution count seed.
type BaselineCount struct {
	Name            string    `db:"name" json:"name"`
	SubstituteCount int       `db:"substitute_count" json:"substituteCount"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

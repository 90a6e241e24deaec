package models

import (
	"time"

	"github.com/Hasan197668/nis/internal/substitution"
)

// SubstitutionRecord is a persisted entry of the substitution history log.
type SubstitutionRecord struct {
	ID                    string    `db:"id" json:"id"`
	Date                  string    `db:"date" json:"date"`
	Day                   string    `db:"day" json:"day"`
	LessonLabel           string    `db:"lesson_label" json:"lessonLabel"`
	AbsentTeacherName     string    `db:"absent_teacher_name" json:"absentTeacherName"`
	SubstituteTeacherName string    `db:"substitute_teacher_name" json:"substituteTeacherName"`
	Timestamp             int64     `db:"timestamp" json:"timestamp"`
	CreatedAt             time.Time `db:"created_at" json:"-"`
}

// NewSubstitutionRecord maps a finalized record onto its stored form.
func NewSubstitutionRecord(r substitution.SubstitutionRecord) SubstitutionRecord {
	return SubstitutionRecord{
		ID:                    r.ID,
		Date:                  r.Date,
		Day:                   r.Day,
		LessonLabel:           r.LessonLabel,
		AbsentTeacherName:     r.AbsentTeacherName,
		SubstituteTeacherName: r.SubstituteTeacherName,
		Timestamp:             r.Timestamp,
	}
}

// HistoryFilter scopes history listing.
type HistoryFilter struct {
	Teacher  string
	Since    *int64
	Page     int
	PageSize int
}

// SubstituteCount is the number of records a teacher substituted in.
type SubstituteCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// LeaderboardPeriod selects the rolling window of a leaderboard.
type LeaderboardPeriod string

const (
	LeaderboardWeekly  LeaderboardPeriod = "weekly"
	LeaderboardMonthly LeaderboardPeriod = "monthly"
)

// Window returns the length of the rolling period.
func (p LeaderboardPeriod) Window() time.Duration {
	if p == LeaderboardMonthly {
		return 30 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// Valid reports whether p is a known period.
func (p LeaderboardPeriod) Valid() bool {
	return p == LeaderboardWeekly || p == LeaderboardMonthly
}

// Leaderboard ranks substitutes within a rolling window.
type Leaderboard struct {
	Period       LeaderboardPeriod `json:"period"`
	Since        int64             `json:"since"`
	TotalRecords int               `json:"totalRecords"`
	Entries      []SubstituteCount `json:"entries"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

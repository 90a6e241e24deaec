package dto

import "github.com/Hasan197668/nis/internal/substitution"

// CalendarResponse describes the school day grid and the current position in
// the rotation.
type CalendarResponse struct {
	LessonHours    []substitution.LessonHour `json:"lessonHours"`
	WeekDays       []substitution.WeekDay    `json:"weekDays"`
	Today          substitution.WeekDay      `json:"today"`
	Week           int                       `json:"week"`
	Date           string                    `json:"date"`
	AbsenceReasons []string                  `json:"absenceReasons"`
	SchoolName     string                    `json:"schoolName"`
	AcademicYear   string                    `json:"academicYear,omitempty"`
}

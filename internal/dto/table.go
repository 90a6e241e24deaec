package dto

// TimetableRow is one teacher's weekly lessons keyed by day name.
type TimetableRow struct {
	TeacherName string              `json:"teacherName" validate:"required"`
	Schedule    map[string][]string `json:"schedule" validate:"dive,keys,weekday,endkeys,max=8"`
}

// ReplaceTimetablesRequest replaces the stored timetable.
type ReplaceTimetablesRequest struct {
	Timetables []TimetableRow `json:"timetables" validate:"dive"`
}

// DutyRow assigns a teacher to a post on a day.
type DutyRow struct {
	Day         string `json:"day" validate:"required,weekday"`
	Location    string `json:"location" validate:"required"`
	TeacherName string `json:"teacherName" validate:"required"`
}

// ReplaceDutiesRequest replaces the stored duty table.
type ReplaceDutiesRequest struct {
	Duties []DutyRow `json:"duties" validate:"dive"`
}

// BaselineRow seeds a teacher's lifetime substitution count.
type BaselineRow struct {
	Name            string `json:"name" validate:"required"`
	SubstituteCount int    `json:"substituteCount" validate:"min=0"`
}

// ReplaceBaselineRequest replaces the baseline table.
type ReplaceBaselineRequest struct {
	Baseline []BaselineRow `json:"baseline" validate:"dive"`
}

// TableWriteResponse summarises a table replacement or import.
type TableWriteResponse struct {
	Stored      int      `json:"stored"`
	Skipped     int      `json:"skipped,omitempty"`
	Duplicates  []string `json:"duplicates,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	UnknownDays []string `json:"unknownDays,omitempty"`
}

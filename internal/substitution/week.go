package substitution

import "time"

// DisplayDateLayout renders dates the way Turkish staff lists print them.
const DisplayDateLayout = "02.01.2006"

// RecordDateLayout is the date format stored on history records.
const RecordDateLayout = "2006-01-02"

// WeekNumber returns the ISO-8601 week number of t.
func WeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// RotationWeek returns the ISO week of the date weekOffset weeks from now.
func RotationWeek(now time.Time, weekOffset int) int {
	return WeekNumber(now.AddDate(0, 0, 7*weekOffset))
}

// TodayWeekDay maps a date to its school day. Weekends map to Monday.
func TodayWeekDay(t time.Time) WeekDay {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return Monday
	default:
		return weekDays[int(t.Weekday())-1]
	}
}

// MondayOf returns midnight of the Monday starting the week that lies
// weekOffset weeks away from t. Saturday and Sunday belong to the week of the
// preceding Monday.
func MondayOf(t time.Time, weekOffset int) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-back+weekOffset*7, 0, 0, 0, 0, t.Location())
}

// CalendarDate returns the date of day within the week weekOffset weeks away.
// An unknown day resolves to that week's Monday.
func CalendarDate(now time.Time, day WeekDay, weekOffset int) time.Time {
	idx := day.Index()
	if idx < 0 {
		idx = 0
	}
	return MondayOf(now, weekOffset).AddDate(0, 0, idx)
}

// DateForDay is CalendarDate formatted as dd.mm.yyyy.
func DateForDay(now time.Time, day WeekDay, weekOffset int) string {
	return CalendarDate(now, day, weekOffset).Format(DisplayDateLayout)
}

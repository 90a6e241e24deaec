package substitution

// HoursPerDay is the number of lesson hours in a school day.
const HoursPerDay = 8

// LessonHour is one teaching slot of the school day. Index matches the
// column position of the hour inside a day block of the imported timetable.
type LessonHour struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TimeRange string `json:"timeRange"`
	Index     int    `json:"index"`
}

// WeekDay is the Turkish name of a school day.
type WeekDay string

// School days in timetable order.
const (
	Monday    WeekDay = "Pazartesi"
	Tuesday   WeekDay = "Salı"
	Wednesday WeekDay = "Çarşamba"
	Thursday  WeekDay = "Perşembe"
	Friday    WeekDay = "Cuma"
)

var lessonHours = [HoursPerDay]LessonHour{
	{ID: "1", Label: "1. Ders", TimeRange: "08:30 - 09:10", Index: 0},
	{ID: "2", Label: "2. Ders", TimeRange: "09:20 - 10:00", Index: 1},
	{ID: "3", Label: "3. Ders", TimeRange: "10:10 - 10:50", Index: 2},
	{ID: "4", Label: "4. Ders", TimeRange: "11:00 - 11:40", Index: 3},
	{ID: "5", Label: "5. Ders", TimeRange: "11:50 - 12:30", Index: 4},
	{ID: "6", Label: "6. Ders", TimeRange: "13:20 - 14:00", Index: 5},
	{ID: "7", Label: "7. Ders", TimeRange: "14:10 - 14:50", Index: 6},
	{ID: "8", Label: "8. Ders", TimeRange: "15:00 - 15:40", Index: 7},
}

var weekDays = [...]WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday}

// LessonHours returns the lesson hours in day order.
func LessonHours() []LessonHour {
	out := make([]LessonHour, len(lessonHours))
	copy(out, lessonHours[:])
	return out
}

// WeekDays returns the school days in week order.
func WeekDays() []WeekDay {
	out := make([]WeekDay, len(weekDays))
	copy(out, weekDays[:])
	return out
}

// HourByID looks up a lesson hour by its id.
func HourByID(id string) (LessonHour, bool) {
	for _, hour := range lessonHours {
		if hour.ID == id {
			return hour, true
		}
	}
	return LessonHour{}, false
}

// ParseWeekDay resolves a day name regardless of Turkish letter case.
func ParseWeekDay(raw string) (WeekDay, bool) {
	folded := foldDay(raw)
	for _, day := range weekDays {
		if foldDay(string(day)) == folded {
			return day, true
		}
	}
	return "", false
}

// Index returns the position of the day within the week, or -1.
func (d WeekDay) Index() int {
	for i, day := range weekDays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the five school days.
func (d WeekDay) Valid() bool {
	return d.Index() >= 0
}

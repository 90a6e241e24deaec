package substitution

import (
	"fmt"
	"sort"
	"strings"
)

// ExtraDutyLabel marks an on-duty teacher without a rotated post.
const ExtraDutyLabel = "EK NÖBETÇİ"

// TeacherTimetable is one teacher's weekly lesson grid as produced by the
// import step. Each day holds HoursPerDay cells; a missing day is all free.
type TeacherTimetable struct {
	TeacherName string              `json:"teacherName"`
	Schedule    map[string][]string `json:"schedule"`
}

// DutyAssignment places a teacher on a supervision post for a day.
type DutyAssignment struct {
	Day         string `json:"day"`
	Location    string `json:"location"`
	TeacherName string `json:"teacherName"`
}

// BaselineCount seeds a teacher's lifetime substitution load.
type BaselineCount struct {
	Name            string `json:"name"`
	SubstituteCount int    `json:"substituteCount"`
}

// DutyOverride is the manual duty status of a teacher for the selected day.
type DutyOverride int

// Duty override states.
const (
	DutyDefault DutyOverride = iota
	DutyForcedOn
	DutyForcedOff
)

var dutyOverrideNames = map[DutyOverride]string{
	DutyDefault:   "default",
	DutyForcedOn:  "forced_on",
	DutyForcedOff: "forced_off",
}

// String implements fmt.Stringer.
func (o DutyOverride) String() string {
	if name, ok := dutyOverrideNames[o]; ok {
		return name
	}
	return fmt.Sprintf("DutyOverride(%d)", int(o))
}

// MarshalText encodes the override by name.
func (o DutyOverride) MarshalText() ([]byte, error) {
	name, ok := dutyOverrideNames[o]
	if !ok {
		return nil, fmt.Errorf("unknown duty override %d", int(o))
	}
	return []byte(name), nil
}

// UnmarshalText decodes an override name.
func (o *DutyOverride) UnmarshalText(text []byte) error {
	for value, name := range dutyOverrideNames {
		if name == string(text) {
			*o = value
			return nil
		}
	}
	return fmt.Errorf("unknown duty override %q", string(text))
}

// RosterEntry is the derived per-day view of a teacher.
type RosterEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Initials        string   `json:"initials"`
	IsOnDuty        bool     `json:"isOnDuty"`
	DutyLocation    string   `json:"dutyLocation,omitempty"`
	DailySchedule   []string `json:"dailySchedule"`
	SubstituteCount int      `json:"substituteCount"`
}

// FreeAt reports whether the teacher has no lesson at the given hour index.
func (e RosterEntry) FreeAt(index int) bool {
	if index < 0 || index >= len(e.DailySchedule) {
		return true
	}
	return IsFreeCell(e.DailySchedule[index])
}

// Roster is the ordered list of teachers for a day: on duty first, then
// alphabetical in Turkish collation.
type Roster []RosterEntry

// Find returns the entry with the given id.
func (r Roster) Find(id string) (RosterEntry, bool) {
	for _, entry := range r {
		if entry.ID == id {
			return entry, true
		}
	}
	return RosterEntry{}, false
}

// position returns the roster index of id, or -1.
func (r Roster) position(id string) int {
	for i, entry := range r {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

// OnDuty returns the on-duty entries in roster order.
func (r Roster) OnDuty() Roster {
	out := make(Roster, 0, len(r))
	for _, entry := range r {
		if entry.IsOnDuty {
			out = append(out, entry)
		}
	}
	return out
}

// RosterInput carries everything the roster is derived from.
type RosterInput struct {
	Day        WeekDay
	Week       int
	Timetables []TeacherTimetable
	Duties     []DutyAssignment
	Overrides  map[string]DutyOverride
	Baseline   map[string]int
	History    map[string]int
	// Fallback names are used only when neither timetables nor duties name anyone.
	Fallback []string
}

// DutyLocations returns the sorted distinct posts assigned on day, trimmed.
func DutyLocations(day WeekDay, duties []DutyAssignment) []string {
	seen := make(map[string]struct{})
	locations := make([]string, 0)
	for _, duty := range dutiesForDay(day, duties) {
		location := strings.TrimSpace(duty.Location)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// RotateLocation moves original forward by week positions within locations.
// It returns ExtraDutyLabel when there is nothing to rotate through.
func RotateLocation(locations []string, original string, week int) string {
	n := len(locations)
	if n == 0 {
		return ExtraDutyLabel
	}
	idx := sort.SearchStrings(locations, original)
	if idx >= n || locations[idx] != original {
		return ExtraDutyLabel
	}
	shifted := (idx + week) % n
	if shifted < 0 {
		shifted += n
	}
	return locations[shifted]
}

// EffectiveDuty applies a manual override to the scheduled duty status.
func EffectiveDuty(scheduled bool, override DutyOverride) bool {
	switch override {
	case DutyForcedOff:
		return false
	case DutyForcedOn:
		return true
	default:
		return scheduled
	}
}

// BuildRoster derives the day's roster from the weekly tables.
func BuildRoster(in RosterInput) Roster {
	dayDuties := dutiesForDay(in.Day, in.Duties)
	locations := DutyLocations(in.Day, in.Duties)

	timetables := make(map[string]TeacherTimetable, len(in.Timetables))
	names := make(map[string]struct{})
	for _, tt := range in.Timetables {
		name := NormalizeName(tt.TeacherName)
		if name == "" {
			continue
		}
		names[name] = struct{}{}
		if _, exists := timetables[name]; !exists {
			timetables[name] = tt
		}
	}
	originalDuty := make(map[string]DutyAssignment)
	for _, duty := range in.Duties {
		if name := NormalizeName(duty.TeacherName); name != "" {
			names[name] = struct{}{}
		}
	}
	for _, duty := range dayDuties {
		name := NormalizeName(duty.TeacherName)
		if _, exists := originalDuty[name]; name != "" && !exists {
			originalDuty[name] = duty
		}
	}
	if len(names) == 0 {
		for _, raw := range in.Fallback {
			if name := NormalizeName(raw); name != "" {
				names[name] = struct{}{}
			}
		}
	}

	roster := make(Roster, 0, len(names))
	for name := range names {
		duty, scheduled := originalDuty[name]
		onDuty := EffectiveDuty(scheduled, in.Overrides[name])

		var location string
		if onDuty {
			if scheduled {
				location = RotateLocation(locations, strings.TrimSpace(duty.Location), in.Week)
			} else {
				location = ExtraDutyLabel
			}
		}

		roster = append(roster, RosterEntry{
			ID:              name,
			Name:            name,
			Initials:        Initials(name),
			IsOnDuty:        onDuty,
			DutyLocation:    location,
			DailySchedule:   daySchedule(timetables[name], in.Day),
			SubstituteCount: in.Baseline[name] + in.History[name],
		})
	}

	collator := newNameCollator()
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].IsOnDuty != roster[j].IsOnDuty {
			return roster[i].IsOnDuty
		}
		return collator.CompareString(roster[i].Name, roster[j].Name) < 0
	})
	return roster
}

func dutiesForDay(day WeekDay, duties []DutyAssignment) []DutyAssignment {
	target := foldDay(string(day))
	out := make([]DutyAssignment, 0)
	for _, duty := range duties {
		if foldDay(duty.Day) == target {
			out = append(out, duty)
		}
	}
	return out
}

// daySchedule returns exactly HoursPerDay cells for the day; free markers
// are normalised to the empty string.
func daySchedule(tt TeacherTimetable, day WeekDay) []string {
	cells := make([]string, HoursPerDay)
	var raw []string
	if tt.Schedule != nil {
		if exact, ok := tt.Schedule[string(day)]; ok {
			raw = exact
		} else {
			target := foldDay(string(day))
			for key, value := range tt.Schedule {
				if foldDay(key) == target {
					raw = value
					break
				}
			}
		}
	}
	for i := 0; i < HoursPerDay && i < len(raw); i++ {
		if !IsFreeCell(raw[i]) {
			cells[i] = strings.TrimSpace(raw[i])
		}
	}
	return cells
}

package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedule(cells ...string) []string {
	out := make([]string, HoursPerDay)
	copy(out, cells)
	return out
}

func TestDutyLocationsSortedAndDistinct(t *testing.T) {
	duties := []DutyAssignment{
		{Day: "Pazartesi", Location: "Yard", TeacherName: "B"},
		{Day: "pazartesi", Location: "Gate", TeacherName: "A"},
		{Day: "Pazartesi", Location: "Yard", TeacherName: "C"},
		{Day: "Salı", Location: "Canteen", TeacherName: "D"},
	}
	assert.Equal(t, []string{"Gate", "Yard"}, DutyLocations(Monday, duties))
	assert.Empty(t, DutyLocations(Friday, duties))
}

func TestDutyLocationsTrimsPosts(t *testing.T) {
	duties := []DutyAssignment{
		{Day: "Pazartesi", Location: "Gate ", TeacherName: "A"},
		{Day: "Pazartesi", Location: "Gate", TeacherName: "B"},
		{Day: "Pazartesi", Location: " Yard", TeacherName: "C"},
	}
	assert.Equal(t, []string{"Gate", "Yard"}, DutyLocations(Monday, duties))

	roster := BuildRoster(RosterInput{Day: Monday, Week: 1, Duties: duties})
	a, ok := roster.Find("A")
	assert.True(t, ok)
	assert.Equal(t, "Yard", a.DutyLocation)
}

func TestRotateLocationScenario(t *testing.T) {
	locations := []string{"Gate", "Yard"}
	assert.Equal(t, "Yard", RotateLocation(locations, "Gate", 3))
	assert.Equal(t, "Gate", RotateLocation(locations, "Gate", 4))
	assert.Equal(t, ExtraDutyLabel, RotateLocation(nil, "Gate", 3))
	assert.Equal(t, ExtraDutyLabel, RotateLocation(locations, "Roof", 3))
}

func TestRotateLocationIsBijectionEveryWeek(t *testing.T) {
	locations := []string{"1. Kat", "2. Kat Koridoru", "Bahçe - A Blok", "Spor Salonu", "Zemin Kat"}
	for week := 1; week <= 53; week++ {
		seen := make(map[string]struct{}, len(locations))
		for _, original := range locations {
			rotated := RotateLocation(locations, original, week)
			_, dup := seen[rotated]
			require.False(t, dup, "week %d maps two posts onto %s", week, rotated)
			seen[rotated] = struct{}{}
		}
		require.Len(t, seen, len(locations))
	}
}

func TestBuildRosterRotatesAndOrders(t *testing.T) {
	in := RosterInput{
		Day:  Monday,
		Week: 3,
		Timetables: []TeacherTimetable{
			{TeacherName: "zeynep kaya", Schedule: map[string][]string{"Pazartesi": schedule("9-A", "boş", "", "10-B")}},
			{TeacherName: "çağla demir", Schedule: map[string][]string{"PAZARTESİ": schedule("", "11-C")}},
			{TeacherName: "ali veli", Schedule: map[string][]string{"Salı": schedule("9-A")}},
		},
		Duties: []DutyAssignment{
			{Day: "Pazartesi", Location: "Gate", TeacherName: "Zeynep Kaya"},
			{Day: "Pazartesi", Location: "Yard", TeacherName: "ÇAĞLA DEMİR"},
			{Day: "Cuma", Location: "Gate", TeacherName: "Osman Er"},
		},
		Baseline: map[string]int{"ZEYNEP KAYA": 4},
		History:  map[string]int{"ZEYNEP KAYA": 2, "ALİ VELİ": 1},
	}

	roster := BuildRoster(in)
	require.Len(t, roster, 4)

	ids := make([]string, len(roster))
	for i, entry := range roster {
		ids[i] = entry.ID
	}
	assert.Equal(t, []string{"ÇAĞLA DEMİR", "ZEYNEP KAYA", "ALİ VELİ", "OSMAN ER"}, ids)

	zeynep, ok := roster.Find("ZEYNEP KAYA")
	require.True(t, ok)
	assert.True(t, zeynep.IsOnDuty)
	assert.Equal(t, "Yard", zeynep.DutyLocation)
	assert.Equal(t, 6, zeynep.SubstituteCount)
	assert.Equal(t, schedule("9-A", "", "", "10-B"), zeynep.DailySchedule)

	cagla, _ := roster.Find("ÇAĞLA DEMİR")
	assert.Equal(t, "Gate", cagla.DutyLocation)
	assert.Equal(t, schedule("", "11-C"), cagla.DailySchedule)

	ali, _ := roster.Find("ALİ VELİ")
	assert.False(t, ali.IsOnDuty)
	assert.Empty(t, ali.DutyLocation)
	assert.Equal(t, schedule(), ali.DailySchedule, "missing day is all free")
	assert.Equal(t, 1, ali.SubstituteCount)

	osman, _ := roster.Find("OSMAN ER")
	assert.False(t, osman.IsOnDuty, "duty on another day only")
	assert.Len(t, osman.DailySchedule, HoursPerDay)
}

func TestBuildRosterOverrides(t *testing.T) {
	in := RosterInput{
		Day:  Tuesday,
		Week: 10,
		Duties: []DutyAssignment{
			{Day: "Salı", Location: "Gate", TeacherName: "A"},
			{Day: "Salı", Location: "Yard", TeacherName: "B"},
		},
		Timetables: []TeacherTimetable{{TeacherName: "C"}},
		Overrides: map[string]DutyOverride{
			"A": DutyForcedOff,
			"C": DutyForcedOn,
		},
	}
	roster := BuildRoster(in)

	a, _ := roster.Find("A")
	assert.False(t, a.IsOnDuty)
	assert.Empty(t, a.DutyLocation)

	b, _ := roster.Find("B")
	assert.True(t, b.IsOnDuty)
	assert.Equal(t, "Yard", b.DutyLocation, "rotation keeps the full location set even when a post holder is forced off")

	c, _ := roster.Find("C")
	assert.True(t, c.IsOnDuty)
	assert.Equal(t, ExtraDutyLabel, c.DutyLocation)

	onDuty := roster.OnDuty()
	require.Len(t, onDuty, 2)
	assert.Equal(t, "B", onDuty[0].ID)
	assert.Equal(t, "C", onDuty[1].ID)
}

func TestBuildRosterFallback(t *testing.T) {
	roster := BuildRoster(RosterInput{Day: Monday, Fallback: []string{"ahmet çolak", "betül çağlayan"}, Baseline: map[string]int{"AHMET ÇOLAK": 18}})
	require.Len(t, roster, 2)
	assert.Equal(t, "AHMET ÇOLAK", roster[0].ID)
	assert.Equal(t, 18, roster[0].SubstituteCount)

	withData := BuildRoster(RosterInput{Day: Monday, Timetables: []TeacherTimetable{{TeacherName: "X Y"}}, Fallback: []string{"ahmet çolak"}})
	require.Len(t, withData, 1)
	assert.Equal(t, "X Y", withData[0].ID)
}

func TestBuildRosterEmpty(t *testing.T) {
	assert.Empty(t, BuildRoster(RosterInput{Day: Monday}))
}

func TestDutyOverrideText(t *testing.T) {
	raw, err := DutyForcedOn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "forced_on", string(raw))

	var o DutyOverride
	require.NoError(t, o.UnmarshalText([]byte("forced_off")))
	assert.Equal(t, DutyForcedOff, o)
	assert.Error(t, o.UnmarshalText([]byte("maybe")))
}

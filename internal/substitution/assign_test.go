package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, onDuty bool, count int, cells ...string) RosterEntry {
	return RosterEntry{
		ID:              id,
		Name:            id,
		Initials:        Initials(id),
		IsOnDuty:        onDuty,
		DailySchedule:   schedule(cells...),
		SubstituteCount: count,
	}
}

func TestAssignPrefersLowerLoad(t *testing.T) {
	roster := Roster{
		entry("A", true, 5),
		entry("B", true, 2),
		entry("ABSENT", false, 0, "", "", "9-A"),
	}

	plan := Assign(roster, []string{"ABSENT"})

	sub, ok := plan.Cell("3", "ABSENT")
	require.True(t, ok)
	assert.Equal(t, "B", sub)
	for _, hour := range LessonHours() {
		_, exists := plan[hour.ID]
		assert.True(t, exists, "hour %s present", hour.ID)
	}
	_, planned := plan.Cell("1", "ABSENT")
	assert.False(t, planned, "free hours of the absentee are not planned")
}

func TestAssignLeavesBusyHourUncovered(t *testing.T) {
	roster := Roster{
		entry("A", true, 0, "", "", "", "", "10-A"),
		entry("B", true, 0, "", "", "", "", "10-B"),
		entry("ABSENT", false, 0, "", "", "", "", "11-C"),
	}

	plan := Assign(roster, []string{"ABSENT"})

	sub, ok := plan.Cell("5", "ABSENT")
	require.True(t, ok)
	assert.Equal(t, Uncovered, sub)
	covered, uncovered := plan.Counts()
	assert.Equal(t, 0, covered)
	assert.Equal(t, 1, uncovered)
}

func TestAssignOneAbsenteePerSubstitutePerHour(t *testing.T) {
	roster := Roster{
		entry("A", true, 0),
		entry("B", true, 1),
		entry("X", false, 0, "9-A", "9-A"),
		entry("Y", false, 0, "9-B", "9-B"),
		entry("Z", false, 0, "9-C"),
	}

	plan := Assign(roster, []string{"X", "Y", "Z"})

	hour1 := plan["1"]
	require.Len(t, hour1, 3)
	assert.Equal(t, "A", hour1["X"])
	assert.Equal(t, "B", hour1["Y"])
	assert.Equal(t, Uncovered, hour1["Z"])

	// A now carries 1 and B carries 2, so the hour 1 split repeats.
	hour2 := plan["2"]
	assert.Equal(t, "A", hour2["X"])
	assert.Equal(t, "B", hour2["Y"])
	_, planned := hour2["Z"]
	assert.False(t, planned)

	for hourID, cells := range plan {
		seen := map[string]string{}
		for absentID, sub := range cells {
			if sub == Uncovered {
				continue
			}
			other, dup := seen[sub]
			assert.False(t, dup, "hour %s: %s covers %s and %s", hourID, sub, absentID, other)
			seen[sub] = absentID
		}
	}
}

func TestAssignNeverUsesBusyOrOffDutyTeachers(t *testing.T) {
	roster := Roster{
		entry("DUTY-BUSY", true, 0, "12-A"),
		entry("OFF-DUTY", false, 0),
		entry("DUTY-FREE", true, 50),
		entry("ABSENT", false, 0, "9-A"),
	}

	plan := Assign(roster, []string{"ABSENT"})

	assert.Equal(t, "DUTY-FREE", plan["1"]["ABSENT"])
}

func TestAssignPoolExcludesOnlyTheAbsenteeItself(t *testing.T) {
	roster := Roster{
		entry("DUTY-ABSENT", true, 0),
		entry("DUTY-FREE", true, 50),
		entry("ABSENT", false, 0, "9-A"),
	}

	plan := Assign(roster, []string{"ABSENT", "DUTY-ABSENT"})

	assert.Equal(t, "DUTY-ABSENT", plan["1"]["ABSENT"])
	_, planned := plan["1"]["DUTY-ABSENT"]
	assert.False(t, planned, "absentee without lessons is not planned")
}

func TestAssignNeverCoversOwnAbsence(t *testing.T) {
	roster := Roster{
		entry("SELF", true, 0, "", "10-B"),
		entry("ABSENT", false, 0, "9-A", "9-B"),
	}

	plan := Assign(roster, []string{"SELF", "ABSENT"})

	assert.Equal(t, "SELF", plan["1"]["ABSENT"])
	assert.Equal(t, Uncovered, plan["2"]["SELF"])
	assert.Equal(t, Uncovered, plan["2"]["ABSENT"])
}

func TestAssignBalancesLoadAcrossHours(t *testing.T) {
	roster := Roster{
		entry("A", true, 0),
		entry("B", true, 0),
		entry("C", true, 0),
		entry("ABSENT", false, 0, "1", "2", "3", "4", "5", "6"),
	}

	plan := Assign(roster, []string{"ABSENT"})

	got := make([]string, 0, 6)
	for _, hour := range LessonHours()[:6] {
		got = append(got, plan[hour.ID]["ABSENT"])
	}
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, got)
}

func TestAssignTieBreakKeepsRosterOrder(t *testing.T) {
	roster := Roster{
		entry("ZEHRA", true, 3),
		entry("AHMET", true, 3),
		entry("ABSENT", false, 0, "9-A"),
	}
	plan := Assign(roster, []string{"ABSENT"})
	assert.Equal(t, "ZEHRA", plan["1"]["ABSENT"])
}

func TestAssignIsDeterministic(t *testing.T) {
	roster := BuildRoster(RosterInput{
		Day:  Wednesday,
		Week: 7,
		Timetables: []TeacherTimetable{
			{TeacherName: "ayla", Schedule: map[string][]string{"Çarşamba": schedule("9-A", "9-B", "", "10-A")}},
			{TeacherName: "burak", Schedule: map[string][]string{"Çarşamba": schedule("", "", "11-A")}},
			{TeacherName: "cemre", Schedule: map[string][]string{"Çarşamba": schedule("12-A", "", "", "", "12-B")}},
			{TeacherName: "deniz"},
			{TeacherName: "ece"},
		},
		Duties: []DutyAssignment{
			{Day: "Çarşamba", Location: "Bahçe", TeacherName: "burak"},
			{Day: "Çarşamba", Location: "Kantin", TeacherName: "deniz"},
			{Day: "Çarşamba", Location: "Koridor", TeacherName: "ece"},
		},
		Baseline: map[string]int{"DENİZ": 2},
	})
	absent := []string{"AYLA", "CEMRE"}

	first := Assign(roster, absent)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Assign(roster, absent))
	}
}

func TestAssignIgnoresUnknownAndDuplicateAbsentees(t *testing.T) {
	roster := Roster{
		entry("A", true, 0),
		entry("ABSENT", false, 0, "9-A"),
	}
	plan := Assign(roster, []string{"GHOST", "ABSENT", "ABSENT"})
	require.Len(t, plan["1"], 1)
	assert.Equal(t, "A", plan["1"]["ABSENT"])
}

func TestAssignWithoutAbsenteesYieldsEmptyHours(t *testing.T) {
	plan := Assign(Roster{entry("A", true, 0)}, nil)
	require.Len(t, plan, HoursPerDay)
	covered, uncovered := plan.Counts()
	assert.Zero(t, covered)
	assert.Zero(t, uncovered)
}

func TestPlanCloneIsDeep(t *testing.T) {
	plan := Plan{"1": {"X": "A"}}
	clone := plan.Clone()
	clone["1"]["X"] = "B"
	assert.Equal(t, "A", plan["1"]["X"])
	assert.Nil(t, Plan(nil).Clone())
}

package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCellCopiesPlan(t *testing.T) {
	plan := Plan{"1": {"X": "A"}}

	edited := SetCell(plan, "1", "X", "B")
	assert.Equal(t, "B", edited["1"]["X"])
	assert.Equal(t, "A", plan["1"]["X"])

	cleared := SetCell(edited, "1", "X", Uncovered)
	sub, ok := cleared.Cell("1", "X")
	require.True(t, ok)
	assert.Equal(t, Uncovered, sub)

	fresh := SetCell(nil, "4", "Y", "C")
	assert.Equal(t, "C", fresh["4"]["Y"])
}

func TestSetCellAllowsConflicts(t *testing.T) {
	plan := Plan{"1": {"X": "A", "Y": "B"}}
	edited := SetCell(plan, "1", "Y", "A")
	assert.Equal(t, "A", edited["1"]["X"])
	assert.Equal(t, "A", edited["1"]["Y"])
}

func TestConflictStatusPrecedence(t *testing.T) {
	hour, _ := HourByID("2")
	plan := Plan{"2": {"X": "BUSY", "Y": Uncovered}}

	busyAndAssigned := entry("BUSY", true, 0, "", "10-A")
	assert.Equal(t, ConflictAlreadyAssigned, ConflictStatus(busyAndAssigned, hour, plan))

	teaching := entry("TEACHING", false, 0, "", "10-B")
	assert.Equal(t, ConflictOwnLesson, ConflictStatus(teaching, hour, plan))

	free := entry("FREE", false, 0)
	assert.Equal(t, ConflictFree, ConflictStatus(free, hour, plan))
}

func TestCandidatesExcludeAbsenteeAndFilter(t *testing.T) {
	roster := Roster{
		entry("ŞULE IŞIK", true, 0),
		entry("İLKER ÖZ", false, 0, "9-A"),
		entry("OSMAN ER", false, 0),
	}
	hour, _ := HourByID("1")
	plan := Plan{"1": {"OSMAN ER": "ŞULE IŞIK"}}

	all := Candidates(roster, plan, hour, "OSMAN ER", "")
	require.Len(t, all, 2)
	assert.Equal(t, "ŞULE IŞIK", all[0].ID)
	assert.Equal(t, ConflictAlreadyAssigned, all[0].Status)
	assert.Equal(t, "İLKER ÖZ", all[1].ID)
	assert.Equal(t, ConflictOwnLesson, all[1].Status)

	filtered := Candidates(roster, plan, hour, "OSMAN ER", " ilk ")
	require.Len(t, filtered, 1)
	assert.Equal(t, "İLKER ÖZ", filtered[0].ID)

	assert.Empty(t, Candidates(roster, plan, hour, "OSMAN ER", "zzz"))
}

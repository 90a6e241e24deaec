package substitution

import "strings"

// Conflict describes whether a teacher can take over a lesson hour.
type Conflict string

// Conflict states, in precedence order.
const (
	ConflictAlreadyAssigned Conflict = "ALREADY_ASSIGNED_THIS_HOUR"
	ConflictOwnLesson       Conflict = "HAS_OWN_LESSON"
	ConflictFree            Conflict = "FREE"
)

// SetCell returns a copy of plan with one cell overwritten. It performs no
// validation: manual edits may knowingly create conflicts.
func SetCell(plan Plan, hourID, absentID, substituteID string) Plan {
	out := plan.Clone()
	if out == nil {
		out = make(Plan)
	}
	cells, ok := out[hourID]
	if !ok {
		cells = make(map[string]string)
		out[hourID] = cells
	}
	cells[absentID] = substituteID
	return out
}

// ConflictStatus classifies candidate for the given hour of plan.
func ConflictStatus(candidate RosterEntry, hour LessonHour, plan Plan) Conflict {
	for _, sub := range plan[hour.ID] {
		if sub != Uncovered && sub == candidate.ID {
			return ConflictAlreadyAssigned
		}
	}
	if !candidate.FreeAt(hour.Index) {
		return ConflictOwnLesson
	}
	return ConflictFree
}

// Candidate is a teacher offered to the operator for a manual edit.
type Candidate struct {
	RosterEntry
	Status Conflict `json:"status"`
}

// Candidates lists every roster teacher except the absentee, in roster order,
// optionally narrowed to names containing search.
func Candidates(roster Roster, plan Plan, hour LessonHour, absentID, search string) []Candidate {
	needle := UpperTR(strings.TrimSpace(search))
	out := make([]Candidate, 0, len(roster))
	for _, entry := range roster {
		if entry.ID == absentID {
			continue
		}
		if needle != "" && !strings.Contains(entry.Name, needle) {
			continue
		}
		out = append(out, Candidate{RosterEntry: entry, Status: ConflictStatus(entry, hour, plan)})
	}
	return out
}

package substitution

// Uncovered is the plan value of a lesson nobody could take over.
const Uncovered = ""

// Plan maps lesson hour id to absent teacher id to substitute id. A cell that
// exists with the Uncovered value was deliberately left open; a missing cell
// was never planned because the absentee had no lesson that hour.
type Plan map[string]map[string]string

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	for hourID, cells := range p {
		copied := make(map[string]string, len(cells))
		for absentID, sub := range cells {
			copied[absentID] = sub
		}
		out[hourID] = copied
	}
	return out
}

// Cell returns the substitute planned for the absentee at the hour.
func (p Plan) Cell(hourID, absentID string) (string, bool) {
	cells, ok := p[hourID]
	if !ok {
		return "", false
	}
	sub, ok := cells[absentID]
	return sub, ok
}

// Counts returns the number of covered and uncovered cells.
func (p Plan) Counts() (covered, uncovered int) {
	for _, cells := range p {
		for _, sub := range cells {
			if sub == Uncovered {
				uncovered++
			} else {
				covered++
			}
		}
	}
	return covered, uncovered
}

// planState is the accumulator threaded through the hours of one planning pass.
type planState struct {
	plan Plan
	load map[string]int
}

// Assign builds a substitution plan for the absentees, hour by hour. Each
// absent lesson goes to the free on-duty teacher with the lowest combined
// historical and in-pass load; ties keep roster order. A teacher covers at most
// one absentee per hour. Absentees are handled in the order given.
func Assign(roster Roster, absentIDs []string) Plan {
	absentees := make([]RosterEntry, 0, len(absentIDs))
	seen := make(map[string]struct{}, len(absentIDs))
	for _, id := range absentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		entry, ok := roster.Find(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		absentees = append(absentees, entry)
	}

	state := planState{plan: make(Plan, HoursPerDay), load: make(map[string]int)}
	for _, hour := range lessonHours {
		state = assignHour(state, roster, absentees, hour)
	}
	return state.plan
}

func assignHour(state planState, roster Roster, absentees []RosterEntry, hour LessonHour) planState {
	cells := make(map[string]string)
	taken := make(map[string]struct{})

	for _, absent := range absentees {
		if absent.FreeAt(hour.Index) {
			continue
		}

		best := -1
		bestLoad := 0
		for i, candidate := range roster {
			if !candidate.IsOnDuty || !candidate.FreeAt(hour.Index) {
				continue
			}
			if candidate.ID == absent.ID {
				continue
			}
			if _, busy := taken[candidate.ID]; busy {
				continue
			}
			load := candidate.SubstituteCount + state.load[candidate.ID]
			if best < 0 || load < bestLoad {
				best = i
				bestLoad = load
			}
		}

		if best < 0 {
			cells[absent.ID] = Uncovered
			continue
		}
		chosen := roster[best].ID
		cells[absent.ID] = chosen
		taken[chosen] = struct{}{}
		state.load[chosen]++
	}

	state.plan[hour.ID] = cells
	return state
}

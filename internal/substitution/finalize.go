package substitution

import (
	"fmt"
	"sort"
	"time"
)

// SubstitutionRecord is one finalized substitution in the history log.
type SubstitutionRecord struct {
	ID                    string `json:"id"`
	Date                  string `json:"date"`
	Day                   string `json:"day"`
	LessonLabel           string `json:"lessonLabel"`
	AbsentTeacherName     string `json:"absentTeacherName"`
	SubstituteTeacherName string `json:"substituteTeacherName"`
	Timestamp             int64  `json:"timestamp"`
}

// SkippedCell is a plan cell that could not be turned into a record because it
// references an hour or teacher unknown to the roster.
type SkippedCell struct {
	HourID       string `json:"hourId"`
	AbsentID     string `json:"absentId"`
	SubstituteID string `json:"substituteId"`
	Reason       string `json:"reason"`
}

// CommitResult is the batch handed to the history store.
type CommitResult struct {
	Records []SubstitutionRecord `json:"records"`
	Skipped []SkippedCell        `json:"skipped,omitempty"`
}

// Commit converts the covered cells of plan into history records. Uncovered
// cells produce nothing. All records share the commit timestamp. Within an
// hour, records follow absentIDs, the order teachers were marked absent.
func Commit(plan Plan, roster Roster, absentIDs []string, day WeekDay, date string, at time.Time) CommitResult {
	timestamp := at.UnixMilli()
	result := CommitResult{Records: make([]SubstitutionRecord, 0)}

	known := make(map[string]struct{}, len(lessonHours))
	for _, hour := range lessonHours {
		known[hour.ID] = struct{}{}
		cells := plan[hour.ID]
		for _, absentID := range orderedAbsentees(cells, absentIDs, roster) {
			sub := cells[absentID]
			if sub == Uncovered {
				continue
			}
			if _, ok := roster.Find(absentID); !ok {
				result.Skipped = append(result.Skipped, SkippedCell{HourID: hour.ID, AbsentID: absentID, SubstituteID: sub, Reason: "absent teacher not in roster"})
				continue
			}
			if _, ok := roster.Find(sub); !ok {
				result.Skipped = append(result.Skipped, SkippedCell{HourID: hour.ID, AbsentID: absentID, SubstituteID: sub, Reason: "substitute not in roster"})
				continue
			}
			result.Records = append(result.Records, SubstitutionRecord{
				ID:                    fmt.Sprintf("%d-%s-%s", timestamp, hour.ID, absentID),
				Date:                  date,
				Day:                   string(day),
				LessonLabel:           hour.Label,
				AbsentTeacherName:     absentID,
				SubstituteTeacherName: sub,
				Timestamp:             timestamp,
			})
		}
	}

	unknownHours := make([]string, 0)
	for hourID := range plan {
		if _, ok := known[hourID]; !ok {
			unknownHours = append(unknownHours, hourID)
		}
	}
	sort.Strings(unknownHours)
	for _, hourID := range unknownHours {
		for _, absentID := range orderedAbsentees(plan[hourID], absentIDs, roster) {
			if sub := plan[hourID][absentID]; sub != Uncovered {
				result.Skipped = append(result.Skipped, SkippedCell{HourID: hourID, AbsentID: absentID, SubstituteID: sub, Reason: "unknown lesson hour"})
			}
		}
	}
	return result
}

// orderedAbsentees lists the absentees of one hour in marking order; cells of
// teachers not in absentIDs follow by roster position, then lexically.
func orderedAbsentees(cells map[string]string, absentIDs []string, roster Roster) []string {
	ids := make([]string, 0, len(cells))
	listed := make(map[string]struct{}, len(absentIDs))
	for _, id := range absentIDs {
		if _, dup := listed[id]; dup {
			continue
		}
		listed[id] = struct{}{}
		if _, ok := cells[id]; ok {
			ids = append(ids, id)
		}
	}

	rest := make([]string, 0)
	for id := range cells {
		if _, ok := listed[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		pi, pj := roster.position(rest[i]), roster.position(rest[j])
		switch {
		case pi < 0 && pj < 0:
			return rest[i] < rest[j]
		case pi < 0:
			return false
		case pj < 0:
			return true
		default:
			return pi < pj
		}
	})
	return append(ids, rest...)
}

// Package importer reads the school's weekly timetable and duty spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Hasan197668/nis/internal/substitution"
)

const (
	// timetableFirstRow is the zero-based index of the first teacher row; the
	// rows above hold the day and lesson headers.
	timetableFirstRow = 2
	minNameLength     = 3
)

// ErrEmptyWorkbook is returned when the workbook has no sheet or no rows.
var ErrEmptyWorkbook = errors.New("workbook has no data")

// TimetableResult is the parsed weekly timetable plus what was left out.
type TimetableResult struct {
	Timetables []substitution.TeacherTimetable
	Skipped    int
	Duplicates []string
}

// DutyResult is the parsed duty table.
type DutyResult struct {
	Duties      []substitution.DutyAssignment
	Locations   []string
	UnknownDays []string
}

// ParseTimetable reads the first sheet of an xlsx weekly timetable: column A
// carries the teacher name, followed by eight lesson columns for each school
// day. Names shorter than three letters are skipped and the first row of a
// teacher wins.
func ParseTimetable(r io.Reader) (TimetableResult, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return TimetableResult{}, err
	}

	result := TimetableResult{Timetables: make([]substitution.TeacherTimetable, 0)}
	seen := make(map[string]struct{})
	days := substitution.WeekDays()
	for i := timetableFirstRow; i < len(rows); i++ {
		row := rows[i]
		name := substitution.NormalizeName(cellAt(row, 0))
		if utf8.RuneCountInString(name) < minNameLength {
			result.Skipped++
			continue
		}
		if _, dup := seen[name]; dup {
			result.Duplicates = append(result.Duplicates, name)
			continue
		}
		seen[name] = struct{}{}

		schedule := make(map[string][]string, len(days))
		for dayIdx, day := range days {
			start := 1 + dayIdx*substitution.HoursPerDay
			cells := make([]string, substitution.HoursPerDay)
			for hour := range cells {
				cells[hour] = strings.TrimSpace(cellAt(row, start+hour))
			}
			schedule[string(day)] = cells
		}
		result.Timetables = append(result.Timetables, substitution.TeacherTimetable{TeacherName: name, Schedule: schedule})
	}
	return result, nil
}

// ParseDuties reads the first sheet of an xlsx duty table. The first row names
// the posts from column B on; every following row starts with a day name and
// lists the teacher on each post. A blank header cell becomes "Bölge N"; cells
// beyond the last header are ignored.
func ParseDuties(r io.Reader) (DutyResult, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return DutyResult{}, err
	}

	header := rows[0]
	width := len(header) - 1
	if width < 0 {
		width = 0
	}
	locations := make([]string, width)
	for i := range locations {
		loc := strings.TrimSpace(cellAt(header, i+1))
		if loc == "" {
			loc = fmt.Sprintf("Bölge %d", i+1)
		}
		locations[i] = loc
	}

	result := DutyResult{Duties: make([]substitution.DutyAssignment, 0), Locations: locations}
	for _, row := range rows[1:] {
		rawDay := strings.TrimSpace(cellAt(row, 0))
		if rawDay == "" {
			continue
		}
		day, ok := substitution.ParseWeekDay(rawDay)
		if !ok {
			result.UnknownDays = append(result.UnknownDays, rawDay)
			continue
		}
		for i, loc := range locations {
			name := substitution.NormalizeName(cellAt(row, i+1))
			if name == "" {
				continue
			}
			result.Duties = append(result.Duties, substitution.DutyAssignment{Day: string(day), Location: loc, TeacherName: name})
		}
	}
	return result, nil
}

func firstSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return rows, nil
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

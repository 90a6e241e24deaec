package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
	"github.com/Hasan197668/nis/pkg/config"
	"github.com/Hasan197668/nis/pkg/export"
)

const (
	uncoveredLabel     = "BOŞ"
	defaultLessonLabel = "Ders"
)

// Sheet columns.
const (
	colHour       = "Ders"
	colTime       = "Saat"
	colLesson     = "Sınıf / Ders"
	colAbsent     = "Gelmeyen Öğretmen"
	colReason     = "Mazeret"
	colSubstitute = "Yerine Giren"
)

// DailySheet is everything needed to publish the plan of one day.
type DailySheet struct {
	Day     substitution.WeekDay
	Date    time.Time
	Plan    substitution.Plan
	Roster  substitution.Roster
	Absent  []string
	Reasons map[string]models.AbsenceReason
}

type sheetLine struct {
	Hour       substitution.LessonHour
	AbsentID   string
	Lesson     string
	Reason     string
	Substitute string
}

// lines flattens the plan in hour order, absentees in marking order.
func (d DailySheet) lines() []sheetLine {
	out := make([]sheetLine, 0)
	for _, hour := range substitution.LessonHours() {
		cells := d.Plan[hour.ID]
		for _, absentID := range orderCells(cells, d.Absent) {
			lesson := defaultLessonLabel
			if entry, ok := d.Roster.Find(absentID); ok && hour.Index < len(entry.DailySchedule) {
				if cell := strings.TrimSpace(entry.DailySchedule[hour.Index]); cell != "" {
					lesson = cell
				}
			}
			out = append(out, sheetLine{
				Hour:       hour,
				AbsentID:   absentID,
				Lesson:     lesson,
				Reason:     string(d.Reasons[absentID]),
				Substitute: cells[absentID],
			})
		}
	}
	return out
}

func orderCells(cells map[string]string, absent []string) []string {
	ids := make([]string, 0, len(cells))
	listed := make(map[string]struct{}, len(absent))
	for _, id := range absent {
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
	sort.Strings(rest)
	return append(ids, rest...)
}

// ShareText renders the plan as a chat message:
//
//	📢 *PREFIX* - *PAZARTESİ* (14.10.2024)
//
//	⏰ *1. Ders*
//	🔸 *9-A* (AYŞE YILMAZ - Raporlu) ➔ MEHMET KAYA
func ShareText(prefix string, sheet DailySheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 *%s* - *%s* (%s)\n\n", prefix, substitution.UpperTR(string(sheet.Day)), sheet.Date.Format(substitution.DisplayDateLayout))

	var current string
	for _, line := range sheet.lines() {
		if line.Hour.ID != current {
			current = line.Hour.ID
			fmt.Fprintf(&b, "⏰ *%s*\n", line.Hour.Label)
		}
		absent := line.AbsentID
		if line.Reason != "" {
			absent += " - " + line.Reason
		}
		sub := line.Substitute
		if sub == substitution.Uncovered {
			sub = uncoveredLabel
		}
		fmt.Fprintf(&b, "🔸 *%s* (%s) ➔ %s\n", line.Lesson, absent, sub)
	}
	return b.String()
}

// SheetDocument builds the printable daily substitution sheet.
func SheetDocument(school config.SchoolConfig, sheet DailySheet) export.Document {
	rows := make([]map[string]string, 0)
	for _, line := range sheet.lines() {
		sub := line.Substitute
		if sub == substitution.Uncovered {
			sub = uncoveredLabel
		}
		rows = append(rows, map[string]string{
			colHour:       line.Hour.Label,
			colTime:       line.Hour.TimeRange,
			colLesson:     line.Lesson,
			colAbsent:     line.AbsentID,
			colReason:     line.Reason,
			colSubstitute: sub,
		})
	}

	title := school.Name
	if school.AcademicYear != "" {
		title = fmt.Sprintf("%s %s", title, school.AcademicYear)
	}
	doc := export.Document{
		Title:    substitution.UpperTR(title),
		Subtitle: fmt.Sprintf("%s - %s %s", school.MessagePrefix, substitution.UpperTR(string(sheet.Day)), sheet.Date.Format(substitution.DisplayDateLayout)),
		Data: export.Dataset{
			Headers: []string{colHour, colTime, colLesson, colAbsent, colReason, colSubstitute},
			Rows:    rows,
		},
	}
	if school.ApprovalFooter {
		doc.Footer = []string{sheet.Date.Format(substitution.DisplayDateLayout), "UYGUNDUR"}
		if school.PrincipalName != "" {
			doc.Footer = append(doc.Footer, substitution.UpperTR(school.PrincipalName))
		}
		doc.Footer = append(doc.Footer, "Okul Müdürü")
	}
	return doc
}

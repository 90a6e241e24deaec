package substitution

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FreeMarker is the spreadsheet marker for an hour without a lesson.
const FreeMarker = "BOŞ"

// NormalizeName turns a raw teacher name into the roster key: surrounding
// whitespace trimmed, inner runs collapsed and the Turkish upper case applied
// (i becomes İ, ı becomes I).
func NormalizeName(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return ""
	}
	return cases.Upper(language.Turkish).String(collapsed)
}

// UpperTR upper-cases s with Turkish rules without touching whitespace.
func UpperTR(s string) string {
	return cases.Upper(language.Turkish).String(s)
}

// IsFreeCell reports whether a timetable cell denotes a free hour.
func IsFreeCell(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == "" || UpperTR(trimmed) == FreeMarker
}

// Initials returns up to two leading letters of the name's words.
func Initials(name string) string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
		count++
		if count == 2 {
			break
		}
	}
	return b.String()
}

// SortNames orders names alphabetically using Turkish collation.
func SortNames(names []string) {
	collate.New(language.Turkish).SortStrings(names)
}

// newNameCollator returns a collator for one sorting pass. Collators keep
// internal buffers and must not be shared between goroutines.
func newNameCollator() *collate.Collator {
	return collate.New(language.Turkish)
}

func foldDay(raw string) string {
	return cases.Lower(language.Turkish).String(strings.TrimSpace(raw))
}

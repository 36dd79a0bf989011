package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// claimDateLayouts are the formats the funding portal exports. Forms filled
// by hand occasionally use the dotted notation.
var claimDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2.1.2006",
}

// ParseClaimDate parses a date field from the applicant form. Missing or
// malformed values report ok=false instead of an error; the validators turn
// that into a distinct rejection reason.
func ParseClaimDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range claimDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// germanMonths maps the first three letters of a (normalized) German or
// English month name to its number. Austrian spellings ("Jänner") normalize
// onto the same prefixes.
var germanMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February,
	"mar": time.March, "mrz": time.March,
	"apr": time.April, "mai": time.May, "may": time.May,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "okt": time.October, "oct": time.October,
	"nov": time.November, "dez": time.December, "dec": time.December,
}

// textualDatePattern finds dates like "21. Dez 2024" or "1. Februar 2025" in
// running text. OCR may read the day separator as a comma, glue the month to
// the day, or swap letters for digits inside the month name.
var textualDatePattern = regexp.MustCompile(`(\d{1,2})\s*[.,]?\s*([\p{L}01]{3,9})\.?\s*(\d{4})`)

// FindTextualDates returns all textual date occurrences in order.
func FindTextualDates(text string) []string {
	return textualDatePattern.FindAllString(text, -1)
}

// ParseTextualDate parses a single textual date ("21. Dez 2024", "1,Jänner 2025").
func ParseTextualDate(value string) (time.Time, bool) {
	m := textualDatePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	// digit-for-letter OCR confusions inside the month name
	monthToken := strings.NewReplacer("0", "o", "1", "l").Replace(m[2])
	monthToken = NormalizeForMatching(monthToken)
	if len(monthToken) < 3 {
		return time.Time{}, false
	}
	month, ok := germanMonths[monthToken[:3]]
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// dottedDatePattern finds dates like "01.04.2023" in running text, tolerating
// spaces around the dots and a letter O read for a zero.
var dottedDatePattern = regexp.MustCompile(`\b\d{1,2}\s*\.\s*[\dOo]{1,2}\s*\.\s*\d{4}\b`)

// FindDottedDates returns all dotted date occurrences in order.
func FindDottedDates(text string) []string {
	return dottedDatePattern.FindAllString(text, -1)
}

// CleanDottedDate prepares an OCR-read dotted date for parsing: whitespace is
// removed and a letter O next to a digit or the separating dot is repaired to
// a zero ("01 .O4.2023" -> "01.04.2023", "1O.12.2024" -> "10.12.2024").
func CleanDottedDate(value string) string {
	v := []rune(Compact(value))
	for i, r := range v {
		if r != 'O' && r != 'o' {
			continue
		}
		prevOK := i > 0 && (unicode.IsDigit(v[i-1]) || v[i-1] == '.')
		nextOK := i+1 < len(v) && (unicode.IsDigit(v[i+1]) || v[i+1] == '.')
		if prevOK && nextOK {
			v[i] = '0'
		}
	}
	return string(v)
}

// ParseDottedDate parses a dotted date after OCR cleanup.
func ParseDottedDate(value string) (time.Time, bool) {
	t, err := time.Parse("2.1.2006", CleanDottedDate(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthsBetween counts calendar months from start to end, ignoring days:
// Feb 2024 to Jan 2025 is 11. Negative when end precedes start.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// MonthKey renders the "YYYY-MM" bucket of a date.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// FormatISO renders a date as "YYYY-MM-DD".
func FormatISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

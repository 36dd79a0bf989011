package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClaimDate(t *testing.T) {
	d, ok := ParseClaimDate("2024-02-01")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseClaimDate("2024-02-01 00:00:00")
	assert.True(t, ok)
	assert.Equal(t, 1, d.Day())

	d, ok = ParseClaimDate("2024-02-01T00:00:00")
	assert.True(t, ok)
	assert.Equal(t, time.February, d.Month())

	d, ok = ParseClaimDate("01.02.2024")
	assert.True(t, ok)
	assert.Equal(t, 2024, d.Year())

	_, ok = ParseClaimDate("")
	assert.False(t, ok)
	_, ok = ParseClaimDate("not a date")
	assert.False(t, ok)
}

func TestParseTextualDate(t *testing.T) {
	d, ok := ParseTextualDate("21. Dez 2024")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseTextualDate("1. Jänner 2025")
	assert.True(t, ok)
	assert.Equal(t, time.January, d.Month())

	// OCR read the day separator as a comma and glued the month on
	d, ok = ParseTextualDate("21,Dez 2024")
	assert.True(t, ok)
	assert.Equal(t, 21, d.Day())

	// OCR read the o in Nov as a zero
	d, ok = ParseTextualDate("3. N0v 2024")
	assert.True(t, ok)
	assert.Equal(t, time.November, d.Month())

	d, ok = ParseTextualDate("1. Februar 2025")
	assert.True(t, ok)
	assert.Equal(t, time.February, d.Month())

	_, ok = ParseTextualDate("32. Dez 2024")
	assert.False(t, ok)
	_, ok = ParseTextualDate("21. Xyz 2024")
	assert.False(t, ok)
}

func TestCleanDottedDate(t *testing.T) {
	assert.Equal(t, "01.04.2023", CleanDottedDate("01 .O4.2023"))
	assert.Equal(t, "10.12.2024", CleanDottedDate("1O.12.2024"))
	assert.Equal(t, "15.10.1990", CleanDottedDate(" 15. 10. 1990 "))
	// a standalone letter O stays untouched
	assert.Equal(t, "Oktober", CleanDottedDate("Oktober"))
}

func TestParseDottedDate(t *testing.T) {
	d, ok := ParseDottedDate("01 .O4.2023")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDottedDate("1O.12.2024")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDottedDate("")
	assert.False(t, ok)
}

func TestFindDottedDates(t *testing.T) {
	dates := FindDottedDates("Gültigkeitszeitraum 01.02.2024 - 31.01.2025 gedruckt am 05.02.2024")
	assert.Equal(t, []string{"01.02.2024", "31.01.2025", "05.02.2024"}, dates)
}

func TestMonthsBetween(t *testing.T) {
	feb24 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	feb25 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mar24 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 11, MonthsBetween(feb24, jan25))
	assert.Equal(t, 12, MonthsBetween(feb24, feb25))
	assert.Equal(t, 1, MonthsBetween(feb24, mar24))
	assert.Equal(t, 0, MonthsBetween(feb24, feb24))
	assert.Equal(t, -1, MonthsBetween(mar24, feb24))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-02", MonthKey(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
}

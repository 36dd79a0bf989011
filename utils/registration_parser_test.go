package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"klimacheck/dto"
)

var eligiblePostcodes = []string{"5010", "5020", "5026"}

func TestExtractLabeledValueLayouts(t *testing.T) {
	// inline with colon
	lines := NonEmptyLines("Familienname: Mustermann\nVorname: Max")
	assert.Equal(t, "Mustermann", ExtractLabeledValue(lines, "familienname", "nachname"))
	assert.Equal(t, "Max", ExtractLabeledValue(lines, "vorname"))

	// inline without colon
	lines = NonEmptyLines("Familienname oder Nachname Mustermann\nVorname Max")
	assert.Equal(t, "Mustermann", ExtractLabeledValue(lines, "familienname oder nachname", "familienname", "nachname"))
	assert.Equal(t, "Max", ExtractLabeledValue(lines, "vorname"))

	// value on the next line
	lines = NonEmptyLines("Geburtsdatum\n15.10.1990")
	assert.Equal(t, "15.10.1990", ExtractLabeledValue(lines, "geburtsdatum"))

	// block layout: stacked labels, then stacked values in the same order
	lines = NonEmptyLines("Familienname\nVorname\nGeburtsdatum\nMustermann\nMax\n15.10.1990")
	assert.Equal(t, "Mustermann", ExtractLabeledValue(lines, "familienname", "nachname"))
	assert.Equal(t, "Max", ExtractLabeledValue(lines, "vorname"))
	assert.Equal(t, "15.10.1990", ExtractLabeledValue(lines, "geburtsdatum"))

	assert.Equal(t, "", ExtractLabeledValue(NonEmptyLines("kein Label hier"), "vorname"))
}

func TestExtractLabeledValueAdjacentLabels(t *testing.T) {
	// two labels sharing a line must not mis-split into label and "value"
	lines := NonEmptyLines("Vorname  Geschlecht\nMax  männlich")
	assert.NotEqual(t, "Geschlecht", ExtractLabeledValue(lines, "vorname"))
	assert.Equal(t, "", ExtractLabeledValue(lines, "vorname"))

	// a genuine inline value still comes through
	lines = NonEmptyLines("Vorname  Max")
	assert.Equal(t, "Max", ExtractLabeledValue(lines, "vorname"))
}

func TestNormalizeBirthDate(t *testing.T) {
	assert.Equal(t, "1990-10-15", NormalizeBirthDate("15.10.1990"))
	assert.Equal(t, "1990-10-15", NormalizeBirthDate("1990-10-15"))
	// OCR confusions: comma for dot, O for zero, l for one
	assert.Equal(t, "1990-10-15", NormalizeBirthDate("15,10,1990"))
	assert.Equal(t, "1990-10-15", NormalizeBirthDate("15.1O.1990"))
	assert.Equal(t, "1990-11-15", NormalizeBirthDate("15.1l.1990"))
	assert.Equal(t, "", NormalizeBirthDate("unleserlich"))
	assert.Equal(t, "", NormalizeBirthDate(""))
}

func TestExtractRegistrationPostalCode(t *testing.T) {
	lines := NonEmptyLines("Hauptwohnsitz\nMusterstraße 1a\n5020 Salzburg")
	assert.Equal(t, "5020", ExtractRegistrationPostalCode(lines))

	lines = NonEmptyLines("Hauptwohnsitz: Musterstraße 1, 5026 Salzburg")
	assert.Equal(t, "5026", ExtractRegistrationPostalCode(lines))

	assert.Equal(t, "", ExtractRegistrationPostalCode(NonEmptyLines("keine Adresse")))
}

func TestValidateRegistration(t *testing.T) {
	claim := dto.ApplicantClaim{
		FirstName:  "Max",
		LastName:   "Mustermann",
		BirthDate:  "1990-10-15",
		PostalCode: "5020",
	}
	text := `Bestätigung der Meldung
Familienname oder Nachname: Mustermann
Vorname: Max
Geburtsdatum: 15.10.1990
Hauptwohnsitz
Musterstraße 1
5020 Salzburg`

	res := ValidateRegistration(claim, text, eligiblePostcodes)
	assert.True(t, res.Checks.FirstNameOK)
	assert.True(t, res.Checks.LastNameOK)
	assert.True(t, res.Checks.BirthDateOK)
	assert.True(t, res.Checks.PostalCodeOK)
	assert.True(t, res.AllChecksPassed)
	assert.Equal(t, "1990-10-15", res.Extracted.BirthDateISO)
}

func TestValidateRegistrationPostalCodeFlags(t *testing.T) {
	claim := dto.ApplicantClaim{FirstName: "Max", LastName: "Mustermann", BirthDate: "1990-10-15", PostalCode: "5020"}

	// outside the funded area
	text := "Vorname: Max\nNachname: Mustermann\nGeburtsdatum: 15.10.1990\nHauptwohnsitz\n5400 Hallein"
	res := ValidateRegistration(claim, text, eligiblePostcodes)
	assert.False(t, res.Checks.PostalCodeEligible)
	assert.False(t, res.Checks.PostalCodeOK)
	assert.False(t, res.AllChecksPassed)

	// eligible but different from the claim
	text = "Vorname: Max\nNachname: Mustermann\nGeburtsdatum: 15.10.1990\nHauptwohnsitz\n5026 Salzburg"
	res = ValidateRegistration(claim, text, eligiblePostcodes)
	assert.True(t, res.Checks.PostalCodeEligible)
	assert.False(t, res.Checks.PostalCodeMatchesClaim)
	assert.False(t, res.Checks.PostalCodeOK)
}

func TestValidateRegistrationNameMismatch(t *testing.T) {
	claim := dto.ApplicantClaim{FirstName: "Anna", LastName: "Huber", BirthDate: "1990-10-15", PostalCode: "5020"}
	text := "Vorname: Max\nNachname: Mustermann\nGeburtsdatum: 15.10.1990\nHauptwohnsitz\n5020 Salzburg"

	res := ValidateRegistration(claim, text, eligiblePostcodes)
	assert.False(t, res.Checks.FirstNameOK)
	assert.False(t, res.Checks.LastNameOK)
	assert.True(t, res.Checks.BirthDateOK)
	assert.True(t, res.Checks.PostalCodeOK)
	assert.False(t, res.AllChecksPassed)
}

package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"klimacheck/dto"
)

// registrationLabels is the label vocabulary of Austrian registration
// documents (Meldebestätigung / Meldezettel), in normalized form.
var registrationLabels = []string{
	"familienname oder nachname",
	"familienname",
	"nachname",
	"vorname",
	"geschlecht",
	"geburtsdatum",
	"geburtsort",
	"staatsangehorigkeit",
	"zmr zahl",
	"zmr-zahl",
	"zmrzahl",
}

// labelAtLineStart returns the longest vocabulary label the normalized line
// starts with, or "". The compact comparison catches OCR output that split
// the label into letters.
func labelAtLineStart(norm string) string {
	best := ""
	for _, label := range registrationLabels {
		if strings.HasPrefix(norm, label) || strings.HasPrefix(Compact(norm), Compact(label)) {
			if len(label) > len(best) {
				best = label
			}
		}
	}
	return best
}

func isLabelOnlyLine(raw string) bool {
	norm := NormalizeForMatching(raw)
	label := labelAtLineStart(norm)
	return label != "" && (norm == label || Compact(norm) == Compact(label))
}

// inlineValue extracts the value from a "Label: value" or "Label value" line.
// A remainder that itself starts with a vocabulary label is never a value;
// without that guard a line holding two adjacent labels mis-splits and the
// second label comes back as the first one's value.
func inlineValue(raw, label string) string {
	if idx := strings.Index(raw, ":"); idx >= 0 {
		left := NormalizeForMatching(raw[:idx])
		if left == label || Compact(left) == Compact(label) {
			return strings.TrimSpace(raw[idx+1:])
		}
	}
	fields := strings.Fields(raw)
	for k := 1; k < len(fields); k++ {
		left := NormalizeForMatching(strings.Join(fields[:k], " "))
		if left != label && Compact(left) != Compact(label) {
			continue
		}
		value := strings.TrimSpace(strings.Join(fields[k:], " "))
		if labelAtLineStart(NormalizeForMatching(value)) != "" {
			return ""
		}
		return value
	}
	return ""
}

// ExtractLabeledValue finds the value belonging to one of the wanted labels.
// Four layouts occur in the wild: "Label: value", "Label value", the value on
// the line below the label, and a block of stacked labels followed by a block
// of values in the same order. For the block layout the value index is the
// label's position within its block mirrored into the value block.
func ExtractLabeledValue(lines []string, wanted ...string) string {
	wantedSet := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		wantedSet[w] = true
	}

	for i, raw := range lines {
		norm := NormalizeForMatching(raw)
		label := labelAtLineStart(norm)
		if label == "" || !wantedSet[label] {
			continue
		}

		if norm != label && Compact(norm) != Compact(label) {
			if v := inlineValue(raw, label); v != "" {
				return v
			}
			continue
		}

		before := 0
		for j := i - 1; j >= 0 && isLabelOnlyLine(lines[j]); j-- {
			before++
		}
		after := 0
		for j := i + 1; j < len(lines) && isLabelOnlyLine(lines[j]); j++ {
			after++
		}
		idx := i + after + 1 + before
		if idx < len(lines) && !isLabelOnlyLine(lines[idx]) {
			return strings.TrimSpace(lines[idx])
		}
	}
	return ""
}

// NormalizeBirthDate parses a birth date in dotted, dashed or ISO notation and
// returns it as "YYYY-MM-DD", or "" when unreadable. Common OCR confusions are
// repaired first: comma for dot, letter O for zero, l or I for one.
func NormalizeBirthDate(value string) string {
	v := strings.ReplaceAll(Compact(value), ",", ".")
	rs := []rune(v)
	for i, r := range rs {
		prevOK := i > 0 && (unicode.IsDigit(rs[i-1]) || rs[i-1] == '.')
		nextOK := i+1 < len(rs) && (unicode.IsDigit(rs[i+1]) || rs[i+1] == '.')
		if !prevOK || !nextOK {
			continue
		}
		switch r {
		case 'O', 'o':
			rs[i] = '0'
		case 'l', 'I':
			rs[i] = '1'
		}
	}
	v = string(rs)

	for _, layout := range []string{"2.1.2006", "2006-01-02", "2006.1.2"} {
		if t, err := time.Parse(layout, v); err == nil {
			return FormatISO(t)
		}
	}
	return ""
}

var postalCodePattern = regexp.MustCompile(`\b(\d{4})\b`)

// ExtractRegistrationPostalCode returns the first standalone four-digit token
// at or below the "Hauptwohnsitz" marker.
func ExtractRegistrationPostalCode(lines []string) string {
	for i, raw := range lines {
		if !strings.Contains(NormalizeForMatching(raw), "hauptwohnsitz") {
			continue
		}
		for j := i; j < len(lines); j++ {
			if m := postalCodePattern.FindString(lines[j]); m != "" {
				return m
			}
		}
	}
	return ""
}

// ValidateRegistration extracts the personal data from a registration
// document and compares it against the applicant claim. The postal code must
// both lie in the funded area and equal the claimed one; the two sub-flags
// stay separate so rejections can name the actual problem.
func ValidateRegistration(claim dto.ApplicantClaim, text string, eligiblePostcodes []string) dto.RegistrationResult {
	lines := NonEmptyLines(text)

	extracted := dto.RegistrationExtracted{
		FirstName:    ExtractLabeledValue(lines, "vorname"),
		LastName:     ExtractLabeledValue(lines, "familienname oder nachname", "familienname", "nachname"),
		BirthDateISO: NormalizeBirthDate(ExtractLabeledValue(lines, "geburtsdatum")),
		PostalCode:   ExtractRegistrationPostalCode(lines),
	}

	claimBirthISO := NormalizeBirthDate(claim.BirthDate)

	eligible := false
	for _, plz := range eligiblePostcodes {
		if extracted.PostalCode != "" && extracted.PostalCode == plz {
			eligible = true
			break
		}
	}
	matchesClaim := extracted.PostalCode != "" && extracted.PostalCode == strings.TrimSpace(claim.PostalCode)

	checks := dto.RegistrationChecks{
		FirstNameOK:            extracted.FirstName != "" && FirstNameMatches(claim.FirstName, extracted.FirstName),
		LastNameOK:             extracted.LastName != "" && LastNameMatches(claim.LastName, extracted.LastName),
		BirthDateOK:            claimBirthISO != "" && extracted.BirthDateISO != "" && claimBirthISO == extracted.BirthDateISO,
		PostalCodeEligible:     eligible,
		PostalCodeMatchesClaim: matchesClaim,
	}
	checks.PostalCodeOK = checks.PostalCodeEligible && checks.PostalCodeMatchesClaim

	return dto.RegistrationResult{
		Extracted:         extracted,
		ClaimBirthDateISO: claimBirthISO,
		Checks:            checks,
		AllChecksPassed:   checks.FirstNameOK && checks.LastNameOK && checks.BirthDateOK && checks.PostalCodeOK,
	}
}

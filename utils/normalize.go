package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks,
// so "ü" -> "u", "é" -> "e".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeForMatching normalizes text for robust comparisons:
// lowercase, "ß" -> "ss", diacritics removed, hyphen/slash/underscore treated
// as word separators, all other non-alphanumerics dropped, whitespace collapsed.
//
// Example: "Johannes-Filzer-Straße" -> "johannes filzer strasse"
func NormalizeForMatching(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "ß", "ss")
	v = stripDiacritics(v)

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			// separators and stray symbols both become word breaks
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Compact removes all whitespace. Useful for OCR output that drops spaces
// between words ("MarcoWurst", "MaxMichael").
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// CompactPreservingCase strips diacritics and removes everything that is not
// a letter or digit, but keeps the original casing. Glued OCR names keep
// their capitalization ("PhillipAndreas"), which CompactContainsToken uses
// to find word boundaries inside compacted text.
func CompactPreservingCase(value string) string {
	v := strings.ReplaceAll(value, "ß", "ss")
	v = stripDiacritics(v)

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CompactContainsToken reports whether token (normalized, compact, lowercase)
// occurs in the compacted text on word boundaries. A boundary is the string
// edge, a non-letter neighbor, or an uppercase letter starting the next glued
// word. "max" matches "MaxMichael" but not "Maxim".
func CompactContainsToken(text, token string) bool {
	if token == "" {
		return false
	}
	c := []rune(CompactPreservingCase(text))
	lower := []rune(strings.ToLower(string(c)))
	tok := []rune(token)
	n := len(tok)

	for i := 0; i+n <= len(lower); i++ {
		if string(lower[i:i+n]) != token {
			continue
		}
		startOK := i == 0 || unicode.IsUpper(c[i]) || !unicode.IsLetter(c[i-1])
		endOK := i+n == len(c) || unicode.IsUpper(c[i+n]) || !unicode.IsLetter(c[i+n])
		if startOK && endOK {
			return true
		}
	}
	return false
}

// TransliterationVariants returns the normalized form plus a variant with the
// German transliteration digraphs folded ("ae"/"oe"/"ue" -> "a"/"o"/"u"), so
// "Juergen" also matches "Jürgen" (normalized to "jurgen"). Only this safe
// direction is generated; the reverse substitution would raise false positives.
func TransliterationVariants(s string) []string {
	v := NormalizeForMatching(s)
	if v == "" {
		return nil
	}
	folded := strings.NewReplacer("ae", "a", "oe", "o", "ue", "u").Replace(v)
	if folded == v || folded == "" {
		return []string{v}
	}
	return []string{v, folded}
}

// ContainsMarker reports whether a marker word occurs in an already normalized
// line, either directly or in its compacted form (OCR sometimes splits letters
// apart: "f u r").
func ContainsMarker(lineNorm, marker string) bool {
	return strings.Contains(lineNorm, marker) || strings.Contains(Compact(lineNorm), marker)
}

// NonEmptyLines splits text into trimmed, non-empty lines.
func NonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

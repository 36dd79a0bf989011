package utils

import "strings"

// MarkerSpec describes where to look for the customer name in a document:
// a set of anchor words and how many lines below the anchor still belong to
// the address block.
type MarkerSpec struct {
	Markers     []string
	WindowLines int
}

// FirstNameMatches reports whether the first given name from the claim occurs
// in the text. Only the first token counts; second given names are routinely
// dropped on invoices. Matching runs on normalized tokens, then on compacted
// text for OCR output that glued the words together, then on transliteration
// variants ("Juergen" vs "Jürgen").
func FirstNameMatches(claimed, text string) bool {
	formNorm := NormalizeForMatching(claimed)
	if formNorm == "" {
		return false
	}
	first := strings.Fields(formNorm)[0]

	chunkNorm := NormalizeForMatching(text)
	if chunkNorm == "" {
		return false
	}
	if hasToken(chunkNorm, first) || CompactContainsToken(text, first) {
		return true
	}
	for _, v := range TransliterationVariants(first) {
		if hasToken(chunkNorm, v) || CompactContainsToken(text, v) {
			return true
		}
	}
	return false
}

// LastNameMatches reports whether the full last name from the claim occurs in
// the text. Compound names match when every claimed token is present,
// regardless of order ("Huber Maier" vs "Maier Huber"). Document tokens that
// are not part of the claimed name never count toward a match.
func LastNameMatches(claimed, text string) bool {
	formNorm := NormalizeForMatching(claimed)
	chunkNorm := NormalizeForMatching(text)
	if formNorm == "" || chunkNorm == "" {
		return false
	}

	chunkTokens := make(map[string]bool)
	for _, t := range strings.Fields(chunkNorm) {
		chunkTokens[t] = true
	}
	all := true
	for _, t := range strings.Fields(formNorm) {
		if !chunkTokens[t] {
			all = false
			break
		}
	}
	if all {
		return true
	}

	if CompactContainsToken(text, Compact(formNorm)) {
		return true
	}
	for _, v := range TransliterationVariants(formNorm) {
		if CompactContainsToken(text, Compact(v)) {
			return true
		}
	}
	return false
}

func hasToken(normText, token string) bool {
	for _, t := range strings.Fields(normText) {
		if t == token {
			return true
		}
	}
	return false
}

// NameMatchNearMarker scans the document for anchor lines (for example
// "Karteninhaber:") and matches first and last name inside the window of
// lines below each anchor. It returns the matching chunk, or, when no window
// matched, the first anchored chunk as diagnostic context.
func NameMatchNearMarker(text, firstName, lastName string, specs []MarkerSpec) (bool, string) {
	lines := NonEmptyLines(text)
	firstContext := ""

	for i, raw := range lines {
		lineNorm := NormalizeForMatching(raw)
		for _, spec := range specs {
			hit := false
			for _, m := range spec.Markers {
				if ContainsMarker(lineNorm, m) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}

			end := i + spec.WindowLines
			if end > len(lines) {
				end = len(lines)
			}
			chunk := strings.Join(lines[i:end], " ")
			if firstContext == "" {
				firstContext = chunk
			}
			if FirstNameMatches(firstName, chunk) && LastNameMatches(lastName, chunk) {
				return true, chunk
			}
		}
	}
	return false, firstContext
}

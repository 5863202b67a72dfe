// Package canon implements the deterministic string canonicalisation shared
// by every field before tokenization: NFKD normalisation, diacritic
// folding, lowercasing, and punctuation squashing.
package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics removes combining marks produced by NFKD decomposition
// ("é" -> "e" + U+0301 -> "e"), the standard golang.org/x/text recipe for
// diacritic-insensitive matching.
var foldDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// String canonicalises s: NFKD + diacritic folding, lowercasing, and
// collapsing every run of non-alphanumeric runes into a single space, then
// trims the result. Canonicalisation is idempotent: String(String(s)) ==
// String(s).
func String(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	inRun := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteRune(' ')
			inRun = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits a canonicalised string on whitespace. Callers that have
// not already called String should do so first; Tokenize itself performs
// no normalisation.
func Tokenize(canonical string) []string {
	if canonical == "" {
		return nil
	}
	return strings.Fields(canonical)
}

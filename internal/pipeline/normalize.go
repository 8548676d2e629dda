package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes combining marks after NFD decomposition, so that
// "José" and "Jose" compare equal.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeText lowercases, strips diacritics and punctuation, and collapses
// whitespace. All name/company comparisons in the pipeline go through this so
// scoring is deterministic for a fixed input.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// significantTokens splits a normalized string into tokens worth matching on,
// dropping single characters and the given stopword set.
func significantTokens(s string, stopwords []string) []string {
	stop := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		stop[normalizeText(w)] = true
	}

	var tokens []string
	for _, tok := range strings.Fields(normalizeText(s)) {
		if len(tok) < 2 || stop[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// containsToken reports whether haystack (already normalized) contains tok as
// an exact word or substring.
func containsToken(haystack, tok string) bool {
	return strings.Contains(haystack, tok)
}

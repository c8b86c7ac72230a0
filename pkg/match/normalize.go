// Package match implements the text canonicalization, similarity scoring
// and response lookup used by the autoresponder.
package match

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for comparison: lower-case, drop zero-width
// joiner/non-joiner, map punctuation and symbol runes to a space, collapse
// whitespace runs and trim. Total and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '\u200c' || r == '\u200d':
			// zero-width (non-)joiner
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes text and returns its words as a set.
func Tokenize(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(Normalize(text)) {
		out[tok] = struct{}{}
	}
	return out
}

// package match implements title normalization and fuzzy track matching.
//
// Matching compares a normalized requested title against the normalized
// display name of each candidate track using Jaro-Winkler similarity
// (github.com/hbollon/go-edlib), insensitive to token order.
package match

import (
	"sort"
	"strings"
	"unicode"
)

// strippedPunct is punctuation carrying no title identity. Bracketed
// annotations like "(Live)" or "[Remastered]" are removed wholesale.
var strippedPunct = map[rune]struct{}{
	'\'': {}, '’': {}, '‘': {}, '"': {}, '“': {}, '”': {},
	',': {}, '.': {}, '!': {}, '?': {}, ':': {}, ';': {},
	'➔': {}, '…': {},
}

// Normalize canonicalizes a raw song title for comparison. Lower-cases,
// strips bracketed annotations and insignificant punctuation, turns hyphens
// and dashes into token breaks (so "Artist - Title" and "Re-Hash" tokenize
// cleanly), and collapses whitespace runs. Pure and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(title string) string {
	title = stripBrackets(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if _, drop := strippedPunct[r]; drop {
			continue
		}
		if r == '-' || r == '–' || r == '—' {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// stripBrackets removes ()- and []-delimited segments, including the
// delimiters. Unbalanced closers are kept as-is and later dropped as
// punctuation-free text.
func stripBrackets(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
				continue
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// sortTokens returns the string with its whitespace-separated tokens in
// sorted order, for token-order-insensitive comparison.
func sortTokens(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

package query

import (
	"strings"
	"unicode"
)

// Matcher picks the known name that best matches a piece of lowercase
// text. Candidates are passed in their original casing; the returned value
// is one of them.
type Matcher interface {
	Match(text string, candidates []string) (string, bool)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(text string, candidates []string) (string, bool)

func (f MatcherFunc) Match(text string, candidates []string) (string, bool) {
	return f(text, candidates)
}

// SubstringMatcher returns the first candidate, in enumeration order, whose
// lowercase form occurs anywhere in text. A candidate that is a substring of
// another candidate can shadow it; see LongestMatcher.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(text string, candidates []string) (string, bool) {
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc != "" && strings.Contains(text, lc) {
			return c, true
		}
	}
	return "", false
}

// LongestMatcher returns the longest candidate contained in text. Ties keep
// enumeration order.
type LongestMatcher struct{}

func (LongestMatcher) Match(text string, candidates []string) (string, bool) {
	best, found := "", false
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == "" || !strings.Contains(text, lc) {
			continue
		}
		if !found || len(lc) > len(best) {
			best, found = c, true
		}
	}
	return best, found
}

// TokenMatcher only accepts candidates that occur as whole words: the
// candidate's words must appear contiguously in text. "bole" matches
// "teff at bole" but not "boleta".
type TokenMatcher struct{}

func (TokenMatcher) Match(text string, candidates []string) (string, bool) {
	words := tokenize(text)
	for _, c := range candidates {
		cw := tokenize(strings.ToLower(c))
		if len(cw) > 0 && containsRun(words, cw) {
			return c, true
		}
	}
	return "", false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsRun(words, run []string) bool {
	for i := 0; i+len(run) <= len(words); i++ {
		match := true
		for j := range run {
			if words[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// MatcherByName maps a configuration value to a Matcher. Unknown names
// yield SubstringMatcher.
func MatcherByName(name string) Matcher {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "longest":
		return LongestMatcher{}
	case "token":
		return TokenMatcher{}
	default:
		return SubstringMatcher{}
	}
}

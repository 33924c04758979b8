// internal/intent/rules.go
//
// Ordered rule tables: each classifier is a slice of (name, pattern, result)
// evaluated top to bottom, first match wins. Keeping precedence in data makes
// it auditable and lets tests exercise single rules.

package intent

import (
	"strings"
	"unicode"
)

// transcript is a normalized utterance plus its words.
type transcript struct {
	text  string
	words []string
}

func newTranscript(raw string) transcript {
	n := Normalize(raw)
	return transcript{text: n, words: strings.Fields(n)}
}

// Normalize lowercases text, turns hyphens into spaces and drops every other
// character that is not a letter, digit or whitespace ("I'll" -> "ill").
// Runs of whitespace collapse to one space.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '-' || unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type matcher func(t transcript) bool

type rule[T any] struct {
	name   string
	match  matcher
	result T
}

// firstMatch returns the result and name of the first matching rule.
func firstMatch[T any](rules []rule[T], t transcript) (T, string, bool) {
	for _, r := range rules {
		if r.match(t) {
			return r.result, r.name, true
		}
	}
	var zero T
	return zero, "", false
}

// contains matches a substring anywhere in the normalized text.
func contains(sub string) matcher {
	return func(t transcript) bool { return strings.Contains(t.text, sub) }
}

// word matches any of the given whole words.
func word(ws ...string) matcher {
	return func(t transcript) bool {
		for _, have := range t.words {
			for _, w := range ws {
				if have == w {
					return true
				}
			}
		}
		return false
	}
}

func allOf(ms ...matcher) matcher {
	return func(t transcript) bool {
		for _, m := range ms {
			if !m(t) {
				return false
			}
		}
		return true
	}
}

func anyOf(ms ...matcher) matcher {
	return func(t transcript) bool {
		for _, m := range ms {
			if m(t) {
				return true
			}
		}
		return false
	}
}

func not(m matcher) matcher {
	return func(t transcript) bool { return !m(t) }
}

// atMostWords matches utterances of 1..n words.
func atMostWords(n int) matcher {
	return func(t transcript) bool { return len(t.words) > 0 && len(t.words) <= n }
}

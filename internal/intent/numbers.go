// internal/intent/numbers.go
//
// Number extraction from spoken transcripts.
//
// Order of precedence:
//   1. The first token that starts with a digit run >= 1 ("42", "1000", "5th").
//   2. The first run of number words read as an English cardinal:
//      "forty two", "forty-two", "one hundred and five", "a thousand",
//      "nine hundred ninety nine thousand nine hundred ninety nine".
//      A bare multiplier counts once ("hundred" = 100, "thousand" = 1000).
//
// Zero is never an answer: guesses start at 1.

package intent

import (
	"strconv"
	"strings"
)

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teenWords = map[string]int{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]int{
	"thousand": 1000,
	"million":  1000000,
}

// ExtractNumber returns the first positive integer spoken in text.
func ExtractNumber(text string) (int, bool) {
	return extract(strings.Fields(Normalize(text)))
}

func extract(words []string) (int, bool) {
	if n, ok := firstDigits(words); ok {
		return n, true
	}
	return firstSpelled(words)
}

func firstDigits(words []string) (int, bool) {
	for _, w := range words {
		end := 0
		for end < len(w) && w[end] >= '0' && w[end] <= '9' {
			end++
		}
		if end == 0 {
			continue
		}
		n, err := strconv.Atoi(w[:end])
		if err != nil || n < 1 {
			continue
		}
		return n, true
	}
	return 0, false
}

func firstSpelled(words []string) (int, bool) {
	for i := 0; i < len(words); {
		n, used := readCardinal(words[i:])
		if used == 0 {
			i++
			continue
		}
		if n >= 1 {
			return n, true
		}
		i += used
	}
	return 0, false
}

// token classes, used to decide whether the next word can extend a number.
type numClass int

const (
	clsNone numClass = iota
	clsUnit
	clsTeen
	clsTens
	clsHundred
	clsScale
	clsAnd
)

// readCardinal reads one cardinal number from the start of words and reports
// its value and how many words it consumed. used == 0 means words[0] does not
// start a number.
func readCardinal(words []string) (value, used int) {
	total, group, lastScale := 0, 0, 0
	prev := clsNone

	next := func() string {
		if used+1 < len(words) {
			return words[used+1]
		}
		return ""
	}

	for ; used < len(words); used++ {
		w := words[used]
		if u, ok := unitWords[w]; ok {
			if u == 0 {
				if prev != clsNone {
					break
				}
				return 0, 1
			}
			if prev == clsUnit || prev == clsTeen {
				break
			}
			group += u
			prev = clsUnit
			continue
		}
		if t, ok := teenWords[w]; ok {
			if prev == clsUnit || prev == clsTeen || prev == clsTens {
				break
			}
			group += t
			prev = clsTeen
			continue
		}
		if t, ok := tensWords[w]; ok {
			if prev == clsUnit || prev == clsTeen || prev == clsTens {
				break
			}
			group += t
			prev = clsTens
			continue
		}
		if w == "hundred" {
			if group >= 100 || prev == clsTens || prev == clsScale || prev == clsAnd {
				break
			}
			group = max(group, 1) * 100
			prev = clsHundred
			continue
		}
		if s, ok := scaleWords[w]; ok {
			if prev == clsScale || prev == clsAnd || (lastScale != 0 && s >= lastScale) {
				break
			}
			total += max(group, 1) * s
			group, lastScale = 0, s
			prev = clsScale
			continue
		}
		if w == "and" {
			if (prev != clsHundred && prev != clsScale) || !startsSmall(next()) {
				break
			}
			prev = clsAnd
			continue
		}
		if w == "a" && prev == clsNone {
			if n := next(); n != "hundred" && scaleWords[n] == 0 {
				break
			}
			group = 1
			prev = clsUnit
			continue
		}
		break
	}
	return total + group, used
}

// startsSmall reports whether w can follow "and" inside a number.
func startsSmall(w string) bool {
	if u, ok := unitWords[w]; ok && u > 0 {
		return true
	}
	_, teen := teenWords[w]
	_, tens := tensWords[w]
	return teen || tens
}

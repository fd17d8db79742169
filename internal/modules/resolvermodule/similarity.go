package resolvermodule

import (
	"strings"
	"unicode"
)

// Normalize lowercases a title, strips punctuation and collapses runs
// of whitespace into single spaces. Matching always happens on
// normalized forms so "Attack on Titan!" and "attack on titan" compare
// as equal.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation and symbols are dropped entirely
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns a score in [0,1] for how closely two titles match:
//
//  1. identical normalized forms score 1.0
//  2. if one form contains the other, the score is the length ratio
//     shorter/longer, so "naruto" vs "naruto season 2" scores well
//     below an exact match
//  3. otherwise the score is word overlap: shared words divided by the
//     larger word count, ignoring single-character tokens
//
// The function is pure and deterministic.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		la := len([]rune(na))
		lb := len([]rune(nb))
		if la > lb {
			return float64(lb) / float64(la)
		}
		return float64(la) / float64(lb)
	}

	wordsA := significantWords(na)
	wordsB := significantWords(nb)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}

	max := len(wordsA)
	if len(wordsB) > max {
		max = len(wordsB)
	}

	return float64(common) / float64(max)
}

// significantWords tokenizes a normalized title, dropping
// single-character tokens that carry no matching signal.
func significantWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 1 {
			words[w] = true
		}
	}
	return words
}

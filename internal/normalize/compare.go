package normalize

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// IsTransposition reports whether a and b hold the same characters in a
// different order with at least two aligned positions differing, e.g.
// "1013" and "1031". Equal strings are never transpositions.
func IsTransposition(a, b string) bool {
	if len(a) != len(b) || a == b {
		return false
	}
	if sortedChars(a) != sortedChars(b) {
		return false
	}
	return len(DiffPositions(a, b)) >= 2
}

// DiffPositions returns the indexes where equal-length strings differ.
// Strings of different length yield nil.
func DiffPositions(a, b string) []int {
	if len(a) != len(b) {
		return nil
	}
	var positions []int
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			positions = append(positions, i)
		}
	}
	return positions
}

func sortedChars(s string) string {
	chars := strings.Split(s, "")
	sort.Strings(chars)
	return strings.Join(chars, "")
}

// compact normalizes s and removes spaces and punctuation so spoken and
// written forms compare equal ("pal one two three" -> "pal123").
func compact(s string) string {
	return strings.Join(Tokens(s), "")
}

// PhoneticSimilarity is the Jaro-Winkler similarity of the digit-normalized
// forms of a and b, in [0,1].
func PhoneticSimilarity(a, b string) float64 {
	ca, cb := compact(a), compact(b)
	switch {
	case ca == cb:
		return 1
	case ca == "" || cb == "":
		return 0
	}
	return matchr.JaroWinkler(ca, cb, false)
}

// SoundsAlike reports whether any word of a shares a Double Metaphone code
// with any word of b. Pure digit tokens never sound alike unless equal.
func SoundsAlike(a, b string) bool {
	codesA := metaphoneCodes(Tokens(a))
	codesB := metaphoneCodes(Tokens(b))
	for code := range codesA {
		if _, ok := codesB[code]; ok {
			return true
		}
	}
	return false
}

func metaphoneCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		if IsNumeric(t) {
			codes["#"+t] = struct{}{}
			continue
		}
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// BestMatch returns the candidate most similar to word when its similarity
// reaches threshold. Candidates that also sound alike win ties.
func BestMatch(word string, candidates []string, threshold float64) (string, float64, bool) {
	var (
		best      string
		bestScore float64
		bestAlike bool
	)
	for _, c := range candidates {
		score := PhoneticSimilarity(word, c)
		if score < threshold {
			continue
		}
		alike := SoundsAlike(word, c)
		if score > bestScore || (score == bestScore && alike && !bestAlike) {
			best, bestScore, bestAlike = c, score, alike
		}
	}
	return best, bestScore, best != ""
}

package matching

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`\W+`)

// ContainmentScore is returned when one string contains the other
const ContainmentScore = 0.8

// Similarity compares two strings case-insensitively and returns a value in [0,1].
// Equal strings score 1, containment scores ContainmentScore, anything else
// scores the Jaccard index of the two word sets. Two empty strings score 0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return ContainmentScore
	}

	wordsA := WordSet(a)
	wordsB := WordSet(b)

	union := len(wordsA)
	intersection := 0
	for w := range wordsB {
		if _, ok := wordsA[w]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// WordSet splits s on runs of non-word characters and returns the distinct,
// non-empty words. No case folding is applied.
func WordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range nonWord.Split(s, -1) {
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

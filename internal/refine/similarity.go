package refine

import (
	"strings"
	"unicode/utf8"
)

// MatchThreshold is the minimum Similarity for an answer to be matched to an
// option it does not equal.
const MatchThreshold = 0.5

// Similarity scores two strings in [0,1], case-insensitively. It is the larger
// of the normalized Levenshtein ratio and, when one string contains the other,
// the length ratio short/long.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.Join(strings.Fields(a), " "))
	b = strings.ToLower(strings.Join(strings.Fields(b), " "))
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	long := la
	if lb > long {
		long = lb
	}
	score := 1 - float64(levenshtein([]rune(a), []rune(b)))/float64(long)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		short := la
		if lb < short {
			short = lb
		}
		if c := float64(short) / float64(long); c > score {
			score = c
		}
	}
	return score
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// bestMatch returns the option most similar to answer when it clears
// MatchThreshold.
func bestMatch(answer string, options []string) (string, bool) {
	best, bestScore := "", 0.0
	for _, o := range options {
		if s := Similarity(answer, o); s > bestScore {
			best, bestScore = o, s
		}
	}
	return best, bestScore > MatchThreshold
}

package util

import (
	"regexp"
	"strings"
	"unicode"
)

const defaultLongToken = 18

var (
	inlineOptionStart = regexp.MustCompile(`(?:^|\s)\(?A\)\s`)
	inlineOptionAny   = regexp.MustCompile(`(?:^|\s)\(?[A-H]\)\s`)
)

// FixMergedWords repairs text where extraction dropped the spaces between words.
func FixMergedWords(s string) string {
	s = RestoreWordBoundaries(s)
	s = SplitLongTokens(s, defaultLongToken)
	return NormalizeWhitespace(s)
}

func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RestoreWordBoundaries inserts a space at lower->upper and letter<->digit
// transitions. Short letter runs are left alone so that tokens such as
// "iPhone", "H2O", "CO2" or "100C" survive.
func RestoreWordBoundaries(s string) string {
	if s == "" {
		return s
	}
	in := []rune(s)
	out := make([]rune, 0, len(in)+len(in)/8)
	for i, r := range in {
		if i > 0 && needBoundary(in, i) {
			if last := out[len(out)-1]; !unicode.IsSpace(last) {
				out = append(out, ' ')
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func needBoundary(in []rune, i int) bool {
	a, b := in[i-1], in[i]
	switch {
	case unicode.IsLower(a) && unicode.IsUpper(b):
		return lettersBefore(in, i) >= 2
	case unicode.IsLetter(a) && unicode.IsDigit(b):
		return lettersBefore(in, i) >= 3
	case unicode.IsDigit(a) && unicode.IsLetter(b):
		return lettersFrom(in, i) >= 3
	}
	return false
}

func lettersBefore(in []rune, i int) int {
	n := 0
	for j := i - 1; j >= 0 && unicode.IsLetter(in[j]); j-- {
		n++
	}
	return n
}

func lettersFrom(in []rune, i int) int {
	n := 0
	for j := i; j < len(in) && unicode.IsLetter(in[j]); j++ {
		n++
	}
	return n
}

// SplitLongTokens splits purely alphabetic tokens longer than maxLen at the
// consonant->vowel boundary closest to the middle. Tokens without such a
// boundary are left alone.
func SplitLongTokens(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultLongToken
	}
	fields := strings.Fields(s)
	changed := false
	for i, f := range fields {
		word := []rune(f)
		if len(word) <= maxLen || !allLetters(word) {
			continue
		}
		if at := splitPoint(word); at > 0 {
			fields[i] = string(word[:at]) + " " + string(word[at:])
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(fields, " ")
}

func splitPoint(word []rune) int {
	mid := len(word) / 2
	best, bestDist := -1, len(word)
	for i := 3; i < len(word)-3; i++ {
		if isVowel(word[i-1]) || !isVowel(word[i]) {
			continue
		}
		d := i - mid
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func allLetters(word []rune) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func SplitSentences(s string) []string {
	out := make([]string, 0, 8)
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		b.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		// 3.14 and 1.5 are not sentence ends
		if r == '.' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if x := strings.TrimSpace(b.String()); x != "" {
			out = append(out, x)
		}
		b.Reset()
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// DedupSentences drops sentences already seen earlier in s, comparing case-insensitively.
func DedupSentences(s string) string {
	sentences := SplitSentences(s)
	if len(sentences) < 2 {
		return strings.TrimSpace(s)
	}
	seen := make(map[string]struct{}, len(sentences))
	kept := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		key := strings.ToLower(NormalizeWhitespace(sent))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, sent)
	}
	return strings.Join(kept, " ")
}

// StripInlineOptions cuts a question stem at the first leaked option marker.
// Only an "A)" marker, or at least two markers of any letter, count as leaked
// options so that a lone "(see part C)" survives.
func StripInlineOptions(s string) string {
	if loc := inlineOptionStart.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]])
	}
	all := inlineOptionAny.FindAllStringIndex(s, -1)
	if len(all) >= 2 {
		return strings.TrimSpace(s[:all[0][0]])
	}
	return s
}

// CutAtQuestionEnd keeps text up to and including the first '?', or the first
// sentence-ending '.' when there is no question mark.
func CutAtQuestionEnd(s string) string {
	if i := strings.IndexRune(s, '?'); i >= 0 {
		return strings.TrimSpace(s[:i+1])
	}
	runes := []rune(s)
	for i, r := range runes {
		if r != '.' {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	return strings.TrimSpace(s)
}

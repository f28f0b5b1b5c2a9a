package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	answerKeyHeading = regexp.MustCompile(`(?im)^[ \t]*(?:answer[ \t]+key|answer[ \t]+sheet|answers)[ \t]*:?[ \t]*$`)
	keyPair          = regexp.MustCompile(`(\d+)\s*[.)\-:]\s*([A-Ha-h])\b`)
	keyOnlyLine      = regexp.MustCompile(`^\s*(?:\d+\s*[.)\-:]\s*[A-Ha-h]\b[\s,;]*)+$`)
	keyLiteralLine   = regexp.MustCompile(`^\s*(\d+)\s*[.)\-:]\s*(.+?)\s*$`)
)

// SplitAnswerKey separates a trailing answer key section ("Answer Key",
// "Answers") from the question body. key is empty when there is none.
// The heading must stand alone on its line and be followed by a key-shaped
// line; the last such heading wins.
func SplitAnswerKey(text string) (body, key string) {
	locs := answerKeyHeading.FindAllStringIndex(text, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		rest := text[locs[i][1]:]
		if startsWithKeyLine(rest) {
			return text[:locs[i][0]], rest
		}
	}
	return text, ""
}

func startsWithKeyLine(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return keyOnlyLine.MatchString(line) || keyLiteralLine.MatchString(line)
	}
	return false
}

// ParseAnswerKey extracts a question number to answer map. Inside an answer
// key section every "N. answer" line counts; elsewhere only lines made
// entirely of "N. X" letter pairs (e.g. "1.B 2.C 3-A") are trusted.
func ParseAnswerKey(text string) map[int]string {
	_, key := SplitAnswerKey(text)
	if strings.TrimSpace(key) != "" {
		return parseKeyLines(key)
	}
	out := map[int]string{}
	for _, line := range strings.Split(text, "\n") {
		if keyOnlyLine.MatchString(line) {
			addPairs(out, line)
		}
	}
	return out
}

func parseKeyLines(s string) map[int]string {
	out := map[int]string{}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if keyOnlyLine.MatchString(line) {
			addPairs(out, line)
			continue
		}
		if m := keyLiteralLine.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				out[n] = m[2]
			}
		}
	}
	return out
}

func addPairs(out map[int]string, line string) {
	for _, m := range keyPair.FindAllStringSubmatch(line, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		out[n] = strings.ToUpper(m[2])
	}
}

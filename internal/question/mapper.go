package question

import "strings"

var typeKeywords = []struct {
	t     Type
	words []string
}{
	{TypeMultipleChoice, []string{"multiple", "choice", "mcq"}},
	{TypeTrueFalse, []string{"true", "false", "tf"}},
	{TypeEnumeration, []string{"enum", "list", "short", "answer"}},
	{TypeEssay, []string{"essay", "open", "constructed", "free"}},
}

// MapQuestionType classifies an arbitrary type label. Unknown labels map to
// multipleChoice.
func MapQuestionType(label string) Type {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return TypeMultipleChoice
	}
	for _, k := range typeKeywords {
		for _, w := range k.words {
			if strings.Contains(l, w) {
				return k.t
			}
		}
	}
	return TypeMultipleChoice
}

// NormalizeTrueFalse maps an answer value to "true"/"false". ok is false when
// nothing in the value says which one.
func NormalizeTrueFalse(v string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(v))
	l = strings.Trim(l, ".)(: ")
	switch l {
	case "true", "t", "yes", "y", "correct", "a", "1":
		return "true", true
	case "false", "f", "no", "n", "incorrect", "b", "0":
		return "false", true
	}
	hasTrue := strings.Contains(l, "true")
	hasFalse := strings.Contains(l, "false")
	switch {
	case hasTrue && !hasFalse:
		return "true", true
	case hasFalse && !hasTrue:
		return "false", true
	}
	return "true", false
}

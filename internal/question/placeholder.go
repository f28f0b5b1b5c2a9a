package question

import (
	"regexp"
	"strings"
)

const AnswerRequired = "ANSWER REQUIRED"

var genericOption = regexp.MustCompile(`(?i)^(option\s*)?[a-h]$|^(option|choice)\s*\d$|^\.{3}$|^-+$`)

func GenericOptions() []string {
	return []string{"Option A", "Option B", "Option C", "Option D"}
}

// IsGenericOptions reports whether every option is a placeholder like
// "Option A", a bare letter, or empty.
func IsGenericOptions(opts []string) bool {
	if len(opts) == 0 {
		return true
	}
	for _, o := range opts {
		o = strings.TrimSpace(o)
		if o != "" && !genericOption.MatchString(o) {
			return false
		}
	}
	return true
}

// Placeholder builds a well-formed multiple choice record around text.
func Placeholder(text string) Record {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "Which of the following best describes the provided content?"
	}
	if !strings.HasSuffix(text, "?") && !strings.HasSuffix(text, ".") {
		text += "?"
	}
	opts := GenericOptions()
	return Record{
		Question: Question{
			Text:          text,
			Type:          TypeMultipleChoice,
			Options:       opts,
			CorrectAnswer: opts[0],
		},
		Source: SourcePlaceholder,
	}
}

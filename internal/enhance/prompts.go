package enhance

import (
	"fmt"
	"strings"

	"quizflow/internal/question"
)

const SystemPrompt = "You repair and fact-check exam questions. Reply with JSON only."

func BuildEnhancePrompt(r question.Record) string {
	var b strings.Builder
	b.WriteString("Improve this exam question's answer data. Keep the question text as is.\n")
	fmt.Fprintf(&b, "Type: %s\nQuestion: %s\n", r.Type, r.Text)
	if len(r.Options) > 0 {
		fmt.Fprintf(&b, "Current options: %s\n", strings.Join(r.Options, " | "))
	}
	switch r.Type {
	case question.TypeTrueFalse:
		b.WriteString(`Return STRICT JSON: {"correctAnswer": "true"|"false"}`)
	case question.TypeEnumeration:
		b.WriteString(`Return STRICT JSON: {"correctAnswer": "the expected items, comma separated"}`)
	default:
		b.WriteString("Write four specific, plausible options (replace generic ones such as \"Option A\") and pick the correct one.\n")
		b.WriteString(`Return STRICT JSON: {"options": ["...", "...", "...", "..."], "correctAnswer": "exact text of the correct option"}`)
	}
	return b.String()
}

func BuildValidatePrompt(r question.Record) string {
	var b strings.Builder
	b.WriteString("Fact-check this exam question and its answer.\n")
	fmt.Fprintf(&b, "Type: %s\nQuestion: %s\n", r.Type, r.Text)
	if len(r.Options) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(r.Options, " | "))
	}
	fmt.Fprintf(&b, "Marked answer: %s\n", r.CorrectAnswer)
	b.WriteString(`Return STRICT JSON: {"isCorrect": true} when question and answer are factually right.
Otherwise return {"isCorrect": false, "correctedText": "...", "correctedOptions": ["..."], "correctedAnswer": "..."}.`)
	return b.String()
}

package question

type Type string

const (
	TypeMultipleChoice Type = "multipleChoice"
	TypeTrueFalse      Type = "true_false"
	TypeEnumeration    Type = "enumeration"
	TypeEssay          Type = "essay"
)

// Source records which strategy produced a record.
type Source string

const (
	SourceJSON        Source = "json"
	SourcePattern     Source = "pattern"
	SourceAI          Source = "ai"
	SourceAnswerKey   Source = "answer_key"
	SourcePlaceholder Source = "placeholder"
)

// Question is the canonical record handed to callers and stored downstream.
type Question struct {
	Text          string   `json:"text"`
	Type          Type     `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Record wraps a Question with flags that only live while the pipeline runs.
type Record struct {
	Question

	// NeedsAIEnhancement marks generic or missing options/answers.
	NeedsAIEnhancement bool
	// HasEmbeddedAnswer is set when the block label (e.g. "B2.") encoded the
	// correct option. CorrectAnswer must not be rewritten afterwards.
	HasEmbeddedAnswer    bool
	EmbeddedAnswerLetter string
	Source               Source
}

func TrueFalseOptions() []string {
	return []string{"True", "False"}
}

// Clone returns a deep copy so concurrent stages never share option slices.
func (r Record) Clone() Record {
	out := r
	out.Options = append([]string(nil), r.Options...)
	return out
}

// Finalize strips the transient flags.
func Finalize(records []Record) []Question {
	out := make([]Question, 0, len(records))
	for _, r := range records {
		q := r.Question
		q.Options = append([]string{}, r.Options...)
		out = append(out, q)
	}
	return out
}

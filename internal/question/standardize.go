package question

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minTextLen = 3

var (
	textKeys     = []string{"text", "questionText", "question", "question_text", "stem", "prompt"}
	typeKeys     = []string{"type", "questionType", "question_type", "kind"}
	optionKeys   = []string{"options", "choices", "answers_list", "alternatives"}
	answerKeys   = []string{"correctAnswer", "answer", "correct_answer", "correct"}
	embeddedKeys = []string{"hasEmbeddedAnswer", "has_embedded_answer"}
	letterKeys   = []string{"embeddedAnswerLetter", "embedded_answer_letter"}
)

// Standardize folds one loosely shaped extractor object into a Record. It
// returns false when the object has no usable question text.
func Standardize(raw map[string]any, src Source) (Record, bool) {
	text := strings.Join(strings.Fields(firstString(raw, textKeys)), " ")
	if len([]rune(text)) < minTextLen {
		return Record{}, false
	}
	rec := Record{Source: src}
	rec.Text = text
	rec.Options = optionList(firstValue(raw, optionKeys))
	answerVal := firstValue(raw, answerKeys)

	if label := firstString(raw, typeKeys); label != "" {
		rec.Type = MapQuestionType(label)
	} else {
		rec.Type = inferType(rec.Options, answerVal)
	}

	rec.HasEmbeddedAnswer = firstBool(raw, embeddedKeys)
	rec.EmbeddedAnswerLetter = strings.ToUpper(strings.TrimSpace(firstString(raw, letterKeys)))
	rec.CorrectAnswer = answerString(answerVal, rec.Type, rec.Options)

	if rec.HasEmbeddedAnswer && rec.EmbeddedAnswerLetter != "" && rec.Type == TypeMultipleChoice {
		if idx := LetterIndex(rec.EmbeddedAnswerLetter); idx >= 0 && idx < len(rec.Options) {
			rec.CorrectAnswer = rec.Options[idx]
		}
	}
	// The embedded letter indexes an option, so only multiple choice keeps it.
	if rec.Type != TypeMultipleChoice {
		rec.HasEmbeddedAnswer = false
		rec.EmbeddedAnswerLetter = ""
	}
	if rec.HasEmbeddedAnswer && strings.TrimSpace(rec.CorrectAnswer) == "" {
		// nothing to preserve
		rec.HasEmbeddedAnswer = false
	}

	switch rec.Type {
	case TypeTrueFalse:
		rec.Options = TrueFalseOptions()
		v, ok := NormalizeTrueFalse(rec.CorrectAnswer)
		rec.CorrectAnswer = v
		rec.NeedsAIEnhancement = rec.NeedsAIEnhancement || !ok
	case TypeEnumeration, TypeEssay:
		rec.Options = []string{}
		if rec.Type == TypeEssay {
			rec.CorrectAnswer = ""
		}
	}
	return rec, true
}

func StandardizeAll(raws []map[string]any, src Source) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := Standardize(raw, src); ok {
			out = append(out, rec)
		}
	}
	return out
}

// LooksLikeQuestionJSON reports whether text is already a JSON array/object of
// question-shaped entries and returns those entries.
func LooksLikeQuestionJSON(text string) ([]map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" || (text[0] != '[' && text[0] != '{') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	entries := Entries(v)
	for _, e := range entries {
		if firstString(e, textKeys) != "" && firstString(e, typeKeys) != "" {
			return entries, true
		}
	}
	return nil, false
}

// Entries flattens a decoded JSON value into question objects: an array of
// objects, a {"questions": [...]} envelope, or a single object.
func Entries(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		for _, k := range []string{"questions", "items", "data"} {
			if inner, ok := t[k].([]any); ok {
				return Entries(inner)
			}
		}
		return []map[string]any{t}
	}
	return nil
}

// Identity is the (text, type) key used to merge concurrently processed
// records back into their original positions.
func Identity(r Record) string {
	return strings.ToLower(strings.Join(strings.Fields(r.Text), " ")) + "|" + string(r.Type)
}

// LetterIndex maps "A".."Z" to 0..25, -1 otherwise.
func LetterIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return -1
	}
	return int(letter[0] - 'A')
}

func inferType(opts []string, answer any) Type {
	if _, ok := answer.(bool); ok {
		return TypeTrueFalse
	}
	if len(opts) == 0 {
		if s, ok := answer.(string); ok {
			if l := strings.ToLower(strings.TrimSpace(s)); l == "true" || l == "false" {
				return TypeTrueFalse
			}
		}
	}
	return TypeMultipleChoice
}

func answerString(v any, t Type, opts []string) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(a)
	case bool:
		return strconv.FormatBool(a)
	case float64:
		if t == TypeMultipleChoice && a == math.Trunc(a) && int(a) >= 0 && int(a) < len(opts) {
			return opts[int(a)]
		}
		return strconv.FormatFloat(a, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(a))
		for _, p := range a {
			if s := answerString(p, t, nil); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(a))
	}
}

func optionList(v any) []string {
	switch o := v.(type) {
	case []any:
		out := make([]string, 0, len(o))
		for _, item := range o {
			switch it := item.(type) {
			case string:
				out = append(out, strings.TrimSpace(it))
			case map[string]any:
				if s := firstString(it, []string{"text", "value", "label", "option"}); s != "" {
					out = append(out, s)
				}
			case float64, bool:
				out = append(out, fmt.Sprint(it))
			}
		}
		return out
	case []string:
		return append([]string(nil), o...)
	case string:
		parts := strings.FieldsFunc(o, func(r rune) bool { return r == '\n' || r == '|' })
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case map[string]any:
		// {"A": "...", "B": "..."}
		out := make([]string, 0, len(o))
		for c := 'A'; c <= 'H'; c++ {
			if s, ok := o[string(c)].(string); ok {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

func firstValue(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstBool(m map[string]any, keys []string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			return v
		case string:
			return strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	return false
}

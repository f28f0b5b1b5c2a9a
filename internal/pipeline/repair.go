package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"quizflow/internal/pattern"
	"quizflow/internal/question"
)

const maxRepairContext = 4000

// repairFromAnswerKey uses an answer key found in text. Recognized blocks
// with placeholder options get answer-consistent options; answers with no
// block get a question built around them.
func (p *Pipeline) repairFromAnswerKey(ctx context.Context, text string, numbered []pattern.Numbered, model string) []question.Record {
	key := pattern.ParseAnswerKey(text)
	if len(key) == 0 {
		return nil
	}
	p.log.Info("repairing from answer key", "answers", len(key), "blocks", len(numbered))

	out := make([]question.Record, 0, len(key))
	used := make(map[int]bool, len(key))
	for _, n := range numbered {
		ans, ok := key[n.Number]
		if !ok || n.Number == 0 {
			continue
		}
		used[n.Number] = true
		rec := n.Record.Clone()
		rec.Source = question.SourceAnswerKey
		if idx := question.LetterIndex(ans); idx >= 0 {
			if idx < len(rec.Options) {
				rec.CorrectAnswer = rec.Options[idx]
			}
			out = append(out, rec)
			continue
		}
		repaired, err := p.extractor.OptionsForAnswer(ctx, rec, ans, model)
		if err != nil {
			p.log.Warn("answer options request failed", "number", n.Number, "error", err)
			repaired = aroundAnswer(rec, ans)
		}
		out = append(out, repaired)
	}

	body, _ := pattern.SplitAnswerKey(text)
	if r := []rune(body); len(r) > maxRepairContext {
		body = string(r[:maxRepairContext])
	}
	numbers := make([]int, 0, len(key))
	for n := range key {
		if !used[n] {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		ans := key[n]
		if question.LetterIndex(ans) < 0 && strings.TrimSpace(body) != "" {
			rec, err := p.extractor.QuestionForAnswer(ctx, body, ans, model)
			if err == nil {
				out = append(out, rec)
				continue
			}
			p.log.Warn("question for answer request failed", "number", n, "error", err)
		}
		out = append(out, synthesizeAround(n, ans))
	}
	return out
}

// aroundAnswer puts a known literal answer first among generic options and
// leaves the record flagged for enhancement.
func aroundAnswer(rec question.Record, ans string) question.Record {
	opts := question.GenericOptions()
	opts[0] = ans
	rec.Type = question.TypeMultipleChoice
	rec.Options = opts
	rec.CorrectAnswer = ans
	rec.NeedsAIEnhancement = true
	rec.Source = question.SourceAnswerKey
	return rec
}

func synthesizeAround(n int, ans string) question.Record {
	if idx := question.LetterIndex(ans); idx >= 0 {
		opts := question.GenericOptions()
		if idx >= len(opts) {
			idx = 0
		}
		return question.Record{
			Question: question.Question{
				Text:          fmt.Sprintf("Question %d: which option is correct?", n),
				Type:          question.TypeMultipleChoice,
				Options:       opts,
				CorrectAnswer: opts[idx],
			},
			NeedsAIEnhancement: true,
			Source:             question.SourceAnswerKey,
		}
	}
	rec := question.Record{Question: question.Question{
		Text: fmt.Sprintf("Question %d: which of the following is the correct answer?", n),
	}}
	return aroundAnswer(rec, ans)
}

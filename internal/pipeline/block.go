package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"quizflow/internal/pattern"
	"quizflow/internal/question"
	"quizflow/internal/util"
)

// BlockResult holds zero, one or several questions parsed from one block.
type BlockResult struct {
	questions []question.Question
}

func (b BlockResult) Empty() bool {
	return len(b.questions) == 0
}

// Single returns the question when the block held exactly one.
func (b BlockResult) Single() (question.Question, bool) {
	if len(b.questions) != 1 {
		return question.Question{}, false
	}
	return b.questions[0], true
}

func (b BlockResult) All() []question.Question {
	return append([]question.Question(nil), b.questions...)
}

// MarshalJSON encodes null, one question object, or an array.
func (b BlockResult) MarshalJSON() ([]byte, error) {
	switch len(b.questions) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(b.questions[0])
	default:
		return json.Marshal(b.questions)
	}
}

// ProcessBlock parses a single question block: pattern heuristics first, then
// the AI extractor. Unparseable blocks yield an empty result.
func (p *Pipeline) ProcessBlock(ctx context.Context, block, model string) (res BlockResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("block processing panicked", "panic", fmt.Sprint(r))
			res = BlockResult{}
		}
	}()
	text := util.SanitizeText(block)
	if text == "" {
		return BlockResult{}
	}

	var recs []question.Record
	if rec, ok := pattern.ExtractBlock(pattern.Block{Text: text}); ok && !pattern.HasPlaceholderOptions(rec) {
		recs = []question.Record{rec}
	} else {
		aiRecs, err := p.extractor.ExtractBlock(ctx, text, model)
		if err != nil {
			p.log.Warn("block extraction failed", "error", err)
			return BlockResult{}
		}
		recs = aiRecs
	}

	refined := p.refiner.Refine(recs)
	if len(refined) == 0 {
		return BlockResult{}
	}
	final, _, _ := p.polish(ctx, refined, model)
	return BlockResult{questions: question.Finalize(final)}
}

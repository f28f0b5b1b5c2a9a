// Package enhance repairs flagged records and fact-checks factual questions
// through the completion gateway. Every failure degrades to the record as it
// was before the pass.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"quizflow/internal/aiextract"
	"quizflow/internal/logger"
	"quizflow/internal/providers"
	"quizflow/internal/question"
	"quizflow/internal/refine"
)

const (
	OpEnhance  = "enhance"
	OpValidate = "validate"

	DefaultBatchSize = 5
)

var (
	errStillFlagged = errors.New("enhanced record still incomplete")

	factualCue = regexp.MustCompile(`(?i)\bwhat\s+is\s+the\s+(?:capital|chemical|element|symbol|formula|atomic|largest|smallest|longest|tallest|boiling|freezing|speed)\b|` +
		`\bwho\s+(?:discovered|invented|wrote|painted|founded|composed|was\s+the\s+first)\b|` +
		`\bwhen\s+(?:was|did|were)\b|\bhow\s+many\b|\bin\s+what\s+year\b|\bwhich\s+(?:planet|element|country|city|continent|ocean)\b`)
)

type Enhancer struct {
	llm       providers.Completer
	log       *logger.Logger
	batchSize int
}

func New(llm providers.Completer, log *logger.Logger, batchSize int) *Enhancer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Enhancer{llm: llm, log: logger.OrNop(log), batchSize: batchSize}
}

// IsFactual reports whether text asks for a checkable fact.
func IsFactual(text string) bool {
	return factualCue.MatchString(text)
}

// Enhance asks the gateway to repair every flagged record that has no
// embedded answer. Failed items keep their original (still flagged) record.
func (e *Enhancer) Enhance(ctx context.Context, records []question.Record, model string) []question.Record {
	return e.pass(ctx, OpEnhance, records, func(r question.Record) bool {
		return r.NeedsAIEnhancement && !r.HasEmbeddedAnswer
	}, func(ctx context.Context, r question.Record) (question.Record, error) {
		return e.enhanceOne(ctx, r, model)
	})
}

// Validate fact-checks factual questions. A record is replaced only when the
// service reports it incorrect and supplies a usable correction.
func (e *Enhancer) Validate(ctx context.Context, records []question.Record, model string) []question.Record {
	return e.pass(ctx, OpValidate, records, func(r question.Record) bool {
		return !r.HasEmbeddedAnswer && IsFactual(r.Text)
	}, func(ctx context.Context, r question.Record) (question.Record, error) {
		return e.validateOne(ctx, r, model)
	})
}

type itemFunc func(context.Context, question.Record) (question.Record, error)

// pass runs fn over the selected records in batches of batchSize and merges
// the results back by (text, type) identity, keeping the input order.
func (e *Enhancer) pass(ctx context.Context, op string, records []question.Record, selectFn func(question.Record) bool, fn itemFunc) []question.Record {
	out := make([]question.Record, len(records))
	targets := make([]question.Record, 0, len(records))
	for i, r := range records {
		out[i] = r.Clone()
		if selectFn(r) {
			targets = append(targets, r.Clone())
		}
	}
	if len(targets) == 0 {
		return out
	}

	updates := make(map[string]question.Record, len(targets))
	failed := 0
	for start := 0; start < len(targets); start += e.batchSize {
		end := min(start+e.batchSize, len(targets))
		batch := targets[start:end]
		results := make([]question.Record, len(batch))
		errs := make([]error, len(batch))

		var g errgroup.Group
		for i, rec := range batch {
			i, rec := i, rec
			g.Go(func() error {
				defer func() {
					if p := recover(); p != nil {
						errs[i] = fmt.Errorf("%s panicked: %v", op, p)
					}
				}()
				results[i], errs[i] = fn(ctx, rec)
				return nil
			})
		}
		_ = g.Wait()

		for i, rec := range batch {
			if errs[i] != nil {
				failed++
				e.log.Warn("question "+op+" failed, keeping original", "text", rec.Text, "error", errs[i])
				continue
			}
			updates[question.Identity(rec)] = results[i]
		}
	}

	// Records the selector skipped keep their values even when they share an
	// identity with an updated one.
	for i, r := range records {
		if !selectFn(r) {
			continue
		}
		if u, ok := updates[question.Identity(r)]; ok {
			out[i] = u.Clone()
		}
	}
	e.log.Info("question "+op+" pass complete", "targets", len(targets), "updated", len(updates), "failed", failed)
	return out
}

func (e *Enhancer) enhanceOne(ctx context.Context, r question.Record, model string) (question.Record, error) {
	obj, err := e.ask(ctx, OpEnhance, BuildEnhancePrompt(r), model)
	if err != nil {
		return r, err
	}
	cand := r.Clone()
	cand.NeedsAIEnhancement = false
	if opts := stringList(obj["options"]); len(opts) > 0 && cand.Type == question.TypeMultipleChoice {
		cand.Options = opts
	}
	if ans, ok := answerValue(obj["correctAnswer"]); ok {
		cand.CorrectAnswer = ans
	} else {
		return r, fmt.Errorf("enhance: %w", aiextract.ErrEmptyResult)
	}
	cand = refine.RefineRecord(cand)
	if cand.NeedsAIEnhancement || !refine.Complete(cand) {
		return r, errStillFlagged
	}
	return cand, nil
}

func (e *Enhancer) validateOne(ctx context.Context, r question.Record, model string) (question.Record, error) {
	obj, err := e.ask(ctx, OpValidate, BuildValidatePrompt(r), model)
	if err != nil {
		return r, err
	}
	ok, isBool := obj["isCorrect"].(bool)
	if !isBool {
		return r, fmt.Errorf("validate: missing isCorrect: %w", aiextract.ErrDecode)
	}
	if ok {
		return r, nil
	}
	cand := r.Clone()
	if t, ok := obj["correctedText"].(string); ok && strings.TrimSpace(t) != "" {
		cand.Text = refine.SanitizeQuestionText(t)
	}
	if opts := stringList(obj["correctedOptions"]); len(opts) >= 2 && cand.Type == question.TypeMultipleChoice {
		cand.Options = opts
	}
	if ans, ok := answerValue(obj["correctedAnswer"]); ok {
		cand.CorrectAnswer = ans
	}
	cand = refine.RefineRecord(cand)
	if cand.NeedsAIEnhancement || !refine.Complete(cand) {
		return r, errStillFlagged
	}
	return cand, nil
}

func (e *Enhancer) ask(ctx context.Context, op, prompt, model string) (map[string]any, error) {
	raw, err := e.llm.Complete(ctx, providers.CompletionRequest{
		Operation:    op,
		Prompt:       prompt,
		SystemPrompt: SystemPrompt,
		Model:        model,
	})
	if err != nil {
		return nil, err
	}
	return aiextract.DecodeObject(raw)
}

// Degrade clears the enhancement flag on records that are still flagged,
// replacing their answer data with safe defaults.
func Degrade(records []question.Record) []question.Record {
	out := make([]question.Record, 0, len(records))
	for _, r := range records {
		r = r.Clone()
		if !r.NeedsAIEnhancement {
			out = append(out, r)
			continue
		}
		switch r.Type {
		case question.TypeTrueFalse:
			r.Options = question.TrueFalseOptions()
			if v, ok := question.NormalizeTrueFalse(r.CorrectAnswer); ok {
				r.CorrectAnswer = v
			} else {
				r.CorrectAnswer = "true"
			}
		case question.TypeEnumeration:
			r.Options = []string{}
			if strings.TrimSpace(r.CorrectAnswer) == "" {
				r.CorrectAnswer = question.AnswerRequired
			}
		case question.TypeEssay:
			r.Options = []string{}
			r.CorrectAnswer = ""
		default:
			if len(r.Options) < 2 {
				r.Options = question.GenericOptions()
			}
			if !contains(r.Options, r.CorrectAnswer) {
				r.CorrectAnswer = r.Options[0]
			}
		}
		r.NeedsAIEnhancement = false
		out = append(out, r)
	}
	return out
}

func answerValue(v any) (string, bool) {
	switch a := v.(type) {
	case string:
		if strings.TrimSpace(a) != "" {
			return strings.TrimSpace(a), true
		}
	case bool:
		if a {
			return "true", true
		}
		return "false", true
	case []any:
		parts := stringList(a)
		if len(parts) > 0 {
			return strings.Join(parts, ", "), true
		}
	}
	return "", false
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

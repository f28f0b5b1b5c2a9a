// Package aiextract extracts questions through the completion gateway and
// decodes whatever JSON the model returns.
package aiextract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"quizflow/internal/logger"
	"quizflow/internal/providers"
	"quizflow/internal/question"
	"quizflow/internal/util"
)

const (
	OpExtract           = "extract"
	OpExtractFallback   = "extract_fallback"
	OpExtractBlock      = "extract_block"
	OpAnswerOptions     = "answer_options"
	OpQuestionForAnswer = "question_for_answer"

	defaultConcurrency = 5
)

type Extractor struct {
	llm          providers.Completer
	log          *logger.Logger
	chunkSize    int
	chunkOverlap int
	concurrency  int
}

type Option func(*Extractor)

func WithLogger(l *logger.Logger) Option {
	return func(e *Extractor) { e.log = logger.OrNop(l) }
}

// WithChunking sets the rune window used to split long documents.
func WithChunking(size, overlap int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.chunkSize = size
		}
		if overlap >= 0 {
			e.chunkOverlap = overlap
		}
	}
}

func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func New(llm providers.Completer, opts ...Option) *Extractor {
	e := &Extractor{
		llm:          llm,
		log:          logger.Nop(),
		chunkSize:    6000,
		chunkOverlap: 200,
		concurrency:  defaultConcurrency,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ExtractText extracts questions from a whole document. Long documents are
// split into chunks that run concurrently and merge back in chunk order.
// It never returns an empty slice: when the model yields nothing usable the
// result is placeholder records (Source placeholder).
func (e *Extractor) ExtractText(ctx context.Context, text, model string) []question.Record {
	text = strings.TrimSpace(text)
	if text == "" {
		return PlaceholdersFromSentences(text, 1)
	}
	chunks := util.ChunkText(text, e.chunkSize, e.chunkOverlap)
	results := make([][]question.Record, len(chunks))
	errs := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					errs[i] = fmt.Errorf("chunk %d panicked: %v", i, p)
				}
			}()
			results[i], errs[i] = e.extractChunk(gctx, chunk, model)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]question.Record, 0, 16)
	seen := map[string]struct{}{}
	failed := false
	for i, recs := range results {
		if errs[i] != nil {
			if !errors.Is(errs[i], ErrEmptyResult) {
				failed = true
			}
			e.log.Warn("ai chunk extraction failed", "chunk", i, "chunks", len(chunks), "error", errs[i])
			continue
		}
		for _, r := range recs {
			id := question.Identity(r)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, r)
		}
	}
	if len(out) > 0 {
		e.log.Info("ai extraction complete", "chunks", len(chunks), "questions", len(out))
		return out
	}
	if failed {
		e.log.Warn("ai extraction failed, synthesizing placeholders from paragraphs")
		return PlaceholdersFromParagraphs(text)
	}
	e.log.Warn("ai extraction returned no questions, synthesizing placeholders from sentences")
	return PlaceholdersFromSentences(text, maxPlaceholders)
}

func (e *Extractor) extractChunk(ctx context.Context, chunk, model string) ([]question.Record, error) {
	raw, err := e.complete(ctx, OpExtract, BuildExtractionPrompt(chunk), model)
	if err != nil {
		return nil, err
	}
	recs, err := standardized(raw)
	if !errors.Is(err, ErrDecode) {
		return recs, err
	}
	e.log.Warn("ai response not decodable, retrying with fallback prompt", "response", truncate(raw, 200))
	raw, err = e.complete(ctx, OpExtractFallback, BuildFallbackPrompt(chunk), model)
	if err != nil {
		return nil, fmt.Errorf("fallback extraction: %w", err)
	}
	return standardized(raw)
}

// ExtractBlock extracts the question(s) of a single block. The model may
// answer with one object or an array.
func (e *Extractor) ExtractBlock(ctx context.Context, block, model string) ([]question.Record, error) {
	if strings.TrimSpace(block) == "" {
		return nil, ErrEmptyResult
	}
	raw, err := e.complete(ctx, OpExtractBlock, BuildBlockPrompt(block), model)
	if err != nil {
		return nil, err
	}
	return standardized(raw)
}

// OptionsForAnswer asks for options consistent with a known answer and
// applies them to rec.
func (e *Extractor) OptionsForAnswer(ctx context.Context, rec question.Record, answer, model string) (question.Record, error) {
	raw, err := e.complete(ctx, OpAnswerOptions, BuildAnswerOptionsPrompt(rec.Text, answer), model)
	if err != nil {
		return rec, err
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		return rec, err
	}
	opts := stringList(obj["options"])
	if len(opts) < 2 {
		return rec, fmt.Errorf("answer options: %w", ErrEmptyResult)
	}
	if !containsFold(opts, answer) {
		opts[len(opts)-1] = answer
	}
	out := rec.Clone()
	out.Type = question.TypeMultipleChoice
	out.Options = opts
	out.CorrectAnswer = answer
	out.NeedsAIEnhancement = false
	out.Source = question.SourceAnswerKey
	return out, nil
}

// QuestionForAnswer asks for a multiple choice question built around answer.
func (e *Extractor) QuestionForAnswer(ctx context.Context, source, answer, model string) (question.Record, error) {
	raw, err := e.complete(ctx, OpQuestionForAnswer, BuildQuestionForAnswerPrompt(source, answer), model)
	if err != nil {
		return question.Record{}, err
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		return question.Record{}, err
	}
	rec, ok := question.Standardize(obj, question.SourceAnswerKey)
	if !ok {
		return question.Record{}, fmt.Errorf("question for answer: %w", ErrEmptyResult)
	}
	rec.Type = question.TypeMultipleChoice
	if !containsFold(rec.Options, answer) {
		rec.Options = append(rec.Options, answer)
	}
	rec.CorrectAnswer = answer
	return rec, nil
}

func (e *Extractor) complete(ctx context.Context, op, prompt, model string) (string, error) {
	return e.llm.Complete(ctx, providers.CompletionRequest{
		Operation:    op,
		Prompt:       prompt,
		SystemPrompt: SystemPrompt,
		Model:        model,
	})
}

func standardized(raw string) ([]question.Record, error) {
	entries, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	recs := question.StandardizeAll(entries, question.SourceAI)
	if len(recs) == 0 {
		return nil, ErrEmptyResult
	}
	return recs, nil
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

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

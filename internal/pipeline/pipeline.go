// Package pipeline turns raw document text into canonical questions. Both
// entry points are total: sub-stage failures and panics degrade to fewer or
// placeholder questions, never to an error.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"quizflow/internal/aiextract"
	"quizflow/internal/enhance"
	"quizflow/internal/logger"
	"quizflow/internal/pattern"
	"quizflow/internal/providers"
	"quizflow/internal/question"
	"quizflow/internal/refine"
	"quizflow/internal/util"
)

type Strategy string

const (
	StrategyJSON        Strategy = "json"
	StrategyPattern     Strategy = "pattern"
	StrategyAI          Strategy = "ai"
	StrategyAnswerKey   Strategy = "answer_key"
	StrategyPlaceholder Strategy = "placeholder"
)

// Stats describes one ProcessText run.
type Stats struct {
	Strategy   Strategy      `json:"strategy"`
	Extracted  int           `json:"extracted"`
	Flagged    int           `json:"flagged"`
	Degraded   int           `json:"degraded"`
	Questions  int           `json:"questions"`
	Recovered  bool          `json:"recovered,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
}

type Pipeline struct {
	extractor *aiextract.Extractor
	refiner   *refine.Refiner
	enhancer  *enhance.Enhancer
	log       *logger.Logger
}

type options struct {
	log          *logger.Logger
	batchSize    int
	chunkSize    int
	chunkOverlap int
}

type Option func(*options)

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithEnhanceBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

func WithChunking(size, overlap int) Option {
	return func(o *options) { o.chunkSize, o.chunkOverlap = size, overlap }
}

// New wires the stages around one completion capability, normally a
// *providers.Gateway.
func New(llm providers.Completer, opts ...Option) *Pipeline {
	o := options{batchSize: enhance.DefaultBatchSize, chunkOverlap: -1}
	for _, fn := range opts {
		fn(&o)
	}
	log := logger.OrNop(o.log)
	return &Pipeline{
		extractor: aiextract.New(llm,
			aiextract.WithLogger(log.With("stage", "aiextract")),
			aiextract.WithChunking(o.chunkSize, o.chunkOverlap),
		),
		refiner:  refine.New(log.With("stage", "refine")),
		enhancer: enhance.New(llm, log.With("stage", "enhance"), o.batchSize),
		log:      log,
	}
}

// ProcessText returns a non-empty list of canonical questions for raw.
func (p *Pipeline) ProcessText(ctx context.Context, raw, model string) []question.Question {
	out, _ := p.ProcessTextWithStats(ctx, raw, model)
	return out
}

func (p *Pipeline) ProcessTextWithStats(ctx context.Context, raw, model string) (out []question.Question, stats Stats) {
	start := time.Now()
	text := util.SanitizeText(raw)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline panicked, returning placeholders", "panic", fmt.Sprint(r))
			out = question.Finalize(enhance.Degrade(p.refiner.Refine(aiextract.PlaceholdersFromSentences(text, 3))))
			stats.Strategy = StrategyPlaceholder
			stats.Recovered = true
		}
		stats.Questions = len(out)
		stats.Duration = time.Since(start)
		stats.DurationMS = stats.Duration.Milliseconds()
		p.log.Info("pipeline finished", "strategy", stats.Strategy, "questions", stats.Questions, "flagged", stats.Flagged, "degraded", stats.Degraded, "duration_ms", stats.DurationMS)
	}()

	recs, strategy := p.extract(ctx, text, model)
	stats.Strategy = strategy
	stats.Extracted = len(recs)

	refined := p.refiner.Refine(recs)
	if len(refined) == 0 {
		p.log.Warn("no record survived refinement, synthesizing placeholders", "strategy", strategy)
		stats.Strategy = StrategyPlaceholder
		refined = p.refiner.Refine(aiextract.PlaceholdersFromSentences(text, 3))
	}
	final, flagged, degraded := p.polish(ctx, refined, model)
	stats.Flagged, stats.Degraded = flagged, degraded
	if len(final) == 0 {
		final = enhance.Degrade(p.refiner.Refine([]question.Record{question.Placeholder("")}))
	}
	return question.Finalize(final), stats
}

// polish runs enhancement, validation and degradation, then drops anything
// still incomplete.
func (p *Pipeline) polish(ctx context.Context, recs []question.Record, model string) ([]question.Record, int, int) {
	flagged := countFlagged(recs)
	recs = p.enhancer.Enhance(ctx, recs, model)
	recs = p.enhancer.Validate(ctx, recs, model)
	degraded := countFlagged(recs)
	recs = enhance.Degrade(recs)
	out := make([]question.Record, 0, len(recs))
	for _, r := range recs {
		if refine.Complete(r) {
			out = append(out, r)
		}
	}
	return out, flagged, degraded
}

// extract picks the first strategy that produces real records: direct JSON,
// pattern heuristics, AI extraction, then answer key repair. AI placeholders
// are the last resort.
func (p *Pipeline) extract(ctx context.Context, text, model string) ([]question.Record, Strategy) {
	if entries, ok := question.LooksLikeQuestionJSON(text); ok {
		if recs := question.StandardizeAll(entries, question.SourceJSON); len(recs) > 0 {
			p.log.Debug("direct json input", "entries", len(entries), "records", len(recs))
			return recs, StrategyJSON
		}
	}

	numbered := pattern.ExtractNumbered(text)
	if hasRealRecords(numbered) {
		p.log.Debug("pattern extraction succeeded", "records", len(numbered))
		return records(numbered), StrategyPattern
	}
	p.log.Debug("pattern extraction yielded nothing usable, trying ai", "records", len(numbered))

	aiRecs := p.extractor.ExtractText(ctx, text, model)
	if !allPlaceholders(aiRecs) {
		return aiRecs, StrategyAI
	}

	if repaired := p.repairFromAnswerKey(ctx, text, numbered, model); len(repaired) > 0 {
		return repaired, StrategyAnswerKey
	}
	return aiRecs, StrategyPlaceholder
}

func hasRealRecords(numbered []pattern.Numbered) bool {
	for _, n := range numbered {
		if !pattern.HasPlaceholderOptions(n.Record) {
			return true
		}
	}
	return false
}

func records(numbered []pattern.Numbered) []question.Record {
	out := make([]question.Record, 0, len(numbered))
	for _, n := range numbered {
		out = append(out, n.Record)
	}
	return out
}

func allPlaceholders(recs []question.Record) bool {
	for _, r := range recs {
		if r.Source != question.SourcePlaceholder {
			return false
		}
	}
	return true
}

func countFlagged(recs []question.Record) int {
	n := 0
	for _, r := range recs {
		if r.NeedsAIEnhancement {
			n++
		}
	}
	return n
}

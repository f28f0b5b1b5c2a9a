package activities

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"quizflow/internal/config"
	"quizflow/internal/document"
	"quizflow/internal/logger"
	"quizflow/internal/pipeline"
	"quizflow/internal/providers"
	"quizflow/internal/storage"
	"quizflow/internal/util"

	"go.temporal.io/sdk/temporal"
)

// RunStore persists run status transitions.
type RunStore interface {
	UpdateRunStatus(ctx context.Context, u storage.RunStatusUpdate) error
}

// CompleterFactory returns the completion gateway used for one run.
type CompleterFactory func(runID string) (providers.Completer, error)

type Activities struct {
	cfg   config.Config
	log   *logger.Logger
	runs  RunStore
	llmFn CompleterFactory
}

func New(cfg config.Config, db *storage.DB, log *logger.Logger) (*Activities, error) {
	log = logger.OrNop(log)
	// fail at startup on a bad provider or model list
	if _, err := providers.NewGatewayFromConfig(cfg, log, nil); err != nil {
		return nil, err
	}
	var (
		runs  RunStore
		audit *storage.LLMAuditRepo
	)
	if db != nil {
		runs = storage.NewRunRepo(db)
		if cfg.AuditEnabled {
			audit = storage.NewLLMAuditRepo(db)
		}
	}
	llmFn := func(runID string) (providers.Completer, error) {
		var auditor providers.Auditor
		if audit != nil {
			auditor = audit.ForRun(runID)
		}
		return providers.NewGatewayFromConfig(cfg, log.With("run_id", runID), auditor)
	}
	return NewWithDeps(cfg, log, runs, llmFn), nil
}

func NewWithDeps(cfg config.Config, log *logger.Logger, runs RunStore, llmFn CompleterFactory) *Activities {
	return &Activities{cfg: cfg, log: logger.OrNop(log), runs: runs, llmFn: llmFn}
}

func (a *Activities) DecodeDocumentActivity(ctx context.Context, in DecodeDocumentInput) (DecodeDocumentOutput, error) {
	_ = ctx
	doc, err := document.DecodeFile(in.DocumentPath)
	if errors.Is(err, util.ErrNoExtractableText) || errors.Is(err, document.ErrUnsupportedFormat) {
		return DecodeDocumentOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), "NoExtractableText", err)
	}
	if err != nil {
		return DecodeDocumentOutput{}, err
	}
	a.log.Info("document decoded", "path", in.DocumentPath, "document_id", doc.SHA256, "chars", len(doc.Text))
	return DecodeDocumentOutput{Text: doc.Text, DocumentID: doc.SHA256}, nil
}

func (a *Activities) ExtractQuestionsActivity(ctx context.Context, in ExtractQuestionsInput) (ExtractQuestionsOutput, error) {
	llm, err := a.llmFn(in.RunID)
	if err != nil {
		return ExtractQuestionsOutput{}, fmt.Errorf("build completion gateway: %w", err)
	}
	p := pipeline.New(llm,
		pipeline.WithLogger(a.log.With("run_id", in.RunID)),
		pipeline.WithEnhanceBatchSize(a.cfg.EnhanceBatchSize),
		pipeline.WithChunking(a.cfg.AIChunkSize, a.cfg.AIChunkOverlap),
	)
	questions, stats := p.ProcessTextWithStats(ctx, in.Text, in.Model)
	return ExtractQuestionsOutput{Questions: questions, Stats: stats}, nil
}

func (a *Activities) WriteRunArtifactsActivity(ctx context.Context, in WriteRunArtifactsInput) (WriteRunArtifactsOutput, error) {
	_ = ctx
	base := util.SafeJoin(filepath.Join(a.cfg.DataOutRoot, "runs"), in.RunID)
	path := filepath.Join(base, "questions.json")
	if err := util.WriteJSONAtomic(path, in.Questions); err != nil {
		return WriteRunArtifactsOutput{}, err
	}
	if err := util.WriteJSONAtomic(filepath.Join(base, "stats.json"), in.Stats); err != nil {
		return WriteRunArtifactsOutput{}, err
	}
	return WriteRunArtifactsOutput{Path: path}, nil
}

func (a *Activities) UpdateRunStatusActivity(ctx context.Context, in UpdateRunStatusInput) error {
	if a.runs == nil {
		a.log.Debug("run store disabled, status not persisted", "run_id", in.RunID, "status", in.Status)
		return nil
	}
	return a.runs.UpdateRunStatus(ctx, storage.RunStatusUpdate{
		RunID:     in.RunID,
		Status:    in.Status,
		Strategy:  in.Strategy,
		Questions: in.Questions,
		OutPath:   in.OutPath,
		Error:     in.Error,
	})
}

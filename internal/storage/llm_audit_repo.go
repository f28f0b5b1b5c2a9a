package storage

import (
	"context"
	"fmt"

	"quizflow/internal/providers"

	"github.com/google/uuid"
)

type LLMCallRecord struct {
	CallID       string
	RunID        string
	Operation    string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
	DurationMS   int64
}

type LLMAuditRepo struct {
	db    *DB
	runID string
}

func NewLLMAuditRepo(db *DB) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

// ForRun returns a repo that tags every recorded call with runID.
func (r *LLMAuditRepo) ForRun(runID string) *LLMAuditRepo {
	return &LLMAuditRepo{db: r.db, runID: runID}
}

func (r *LLMAuditRepo) Insert(ctx context.Context, rec LLMCallRecord) error {
	if rec.CallID == "" {
		rec.CallID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO llm_calls(call_id, run_id, operation, provider_name, model, status, error_type, duration_ms)
VALUES ($1::uuid, NULLIF($2,''), $3, $4, $5, $6, NULLIF($7,''), $8)`,
		rec.CallID, rec.RunID, rec.Operation, rec.ProviderName, rec.Model, rec.Status, rec.ErrorType, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}

// RecordCompletion satisfies providers.Auditor.
func (r *LLMAuditRepo) RecordCompletion(ctx context.Context, a providers.CompletionAudit) error {
	return r.Insert(ctx, LLMCallRecord{
		RunID:        r.runID,
		Operation:    a.Operation,
		ProviderName: a.Provider,
		Model:        a.Model,
		Status:       a.Status,
		ErrorType:    string(a.ErrorType),
		DurationMS:   a.Duration.Milliseconds(),
	})
}

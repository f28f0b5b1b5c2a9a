package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizflow/internal/question"

	"github.com/jackc/pgx/v5"
)

const (
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

var ErrRunNotFound = errors.New("run not found")

type RunRecord struct {
	RunID     string              `json:"run_id"`
	Status    string              `json:"status"`
	Model     string              `json:"model,omitempty"`
	Strategy  string              `json:"strategy,omitempty"`
	Questions []question.Question `json:"questions"`
	OutPath   string              `json:"out_path,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type RunStatusUpdate struct {
	RunID     string
	Status    string
	Strategy  string
	Questions []question.Question
	OutPath   string
	Error     string
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) CreateRun(ctx context.Context, runID, model string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO extraction_runs(run_id, status, model)
VALUES ($1, $2, $3)
ON CONFLICT (run_id) DO NOTHING`, runID, RunStatusQueued, model)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// UpdateRunStatus overwrites status and error. Questions, strategy and out
// path are only replaced when the update carries them.
func (r *RunRepo) UpdateRunStatus(ctx context.Context, u RunStatusUpdate) error {
	var questions []byte
	if u.Questions != nil {
		b, err := json.Marshal(u.Questions)
		if err != nil {
			return fmt.Errorf("marshal run questions: %w", err)
		}
		questions = b
	}
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE extraction_runs
SET status = $2,
    strategy = COALESCE(NULLIF($3,''), strategy),
    questions = COALESCE($4::jsonb, questions),
    out_path = COALESCE(NULLIF($5,''), out_path),
    error = $6,
    updated_at = now()
WHERE run_id = $1`, u.RunID, u.Status, u.Strategy, questions, u.OutPath, u.Error)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update run %s: %w", u.RunID, ErrRunNotFound)
	}
	return nil
}

func (r *RunRepo) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	var (
		rec       RunRecord
		questions []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, status, model, strategy, questions, out_path, error, created_at, updated_at
FROM extraction_runs WHERE run_id = $1`, runID).Scan(
		&rec.RunID, &rec.Status, &rec.Model, &rec.Strategy, &questions, &rec.OutPath, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	rec.Questions = []question.Question{}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &rec.Questions); err != nil {
			return RunRecord{}, fmt.Errorf("decode run questions: %w", err)
		}
	}
	return rec, nil
}

package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
	run_id      TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	model       TEXT NOT NULL DEFAULT '',
	strategy    TEXT NOT NULL DEFAULT '',
	questions   JSONB NOT NULL DEFAULT '[]'::jsonb,
	out_path    TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS llm_calls (
	call_id       UUID PRIMARY KEY,
	run_id        TEXT,
	operation     TEXT NOT NULL,
	provider_name TEXT NOT NULL,
	model         TEXT NOT NULL,
	status        TEXT NOT NULL,
	error_type    TEXT,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS llm_calls_run_id_idx ON llm_calls(run_id)`,
}

// EnsureSchema creates the tables used by the api and worker when missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

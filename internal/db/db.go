// Package db provides PostgreSQL persistence for analysis runs,
// artifacts, node telemetry, and the video metadata cache.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id        UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	doc_id        TEXT NOT NULL,
	status        TEXT NOT NULL,
	payload       JSONB,
	approval_token TEXT NOT NULL DEFAULT '',
	last_error    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS run_status_log (
	id         BIGSERIAL PRIMARY KEY,
	run_id     UUID NOT NULL REFERENCES analysis_runs(run_id),
	status     TEXT NOT NULL,
	payload    JSONB,
	last_error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS run_status_log_run_idx ON run_status_log (run_id, id);

CREATE TABLE IF NOT EXISTS artifacts (
	run_id        UUID NOT NULL REFERENCES analysis_runs(run_id),
	artifact_type TEXT NOT NULL,
	content       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, artifact_type)
);

CREATE TABLE IF NOT EXISTS node_events (
	id           BIGSERIAL PRIMARY KEY,
	run_id       UUID NOT NULL REFERENCES analysis_runs(run_id),
	node_name    TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	state_before JSONB,
	state_after  JSONB,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS node_events_run_idx ON node_events (run_id, id);

CREATE TABLE IF NOT EXISTS video_search_cache (
	query      TEXT PRIMARY KEY,
	results    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS video_metadata (
	video_id   TEXT PRIMARY KEY,
	metadata   JSONB NOT NULL,
	analysis   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

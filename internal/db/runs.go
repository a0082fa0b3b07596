package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun inserts a new analysis run in pending state and appends the
// first status-log entry.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, email, docID string, payload map[string]any) error {
	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO analysis_runs (run_id, email, doc_id, status, payload)
		 VALUES ($1, $2, $3, 'pending', $4)`,
		runID, email, docID, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO run_status_log (run_id, status, payload) VALUES ($1, 'pending', $2)`,
		runID, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log run creation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run creation: %w", err)
	}
	return nil
}

// UpdateStatus appends a status-log entry and updates the latest view.
// The status log is append-only; history is never rewritten.
func (db *DB) UpdateStatus(ctx context.Context, runID uuid.UUID, status string, payload map[string]any, lastError string) error {
	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO run_status_log (run_id, status, payload, last_error)
		 VALUES ($1, $2, $3, $4)`,
		runID, status, payloadJSON, lastError,
	)
	if err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE analysis_runs
		 SET status = $1, payload = $2, last_error = $3, updated_at = NOW()
		 WHERE run_id = $4`,
		status, payloadJSON, lastError, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}
	return nil
}

// ClaimForResume moves the run from awaiting_approval to running in a
// single conditional update. It returns false when the run is missing
// or no longer awaiting approval, so concurrent approval clicks resolve
// to exactly one resume.
func (db *DB) ClaimForResume(ctx context.Context, runID uuid.UUID) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE analysis_runs SET status = 'running', updated_at = NOW()
		 WHERE run_id = $1 AND status = 'awaiting_approval'`,
		runID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO run_status_log (run_id, status, payload)
		 SELECT run_id, 'running', payload FROM analysis_runs WHERE run_id = $1`,
		runID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to log resume claim: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit resume claim: %w", err)
	}
	return true, nil
}

// GetLatest returns the current view of a run, or nil when it does not exist.
func (db *DB) GetLatest(ctx context.Context, runID uuid.UUID) (*RunRow, error) {
	var row RunRow
	var payloadJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT run_id, email, doc_id, status, payload, approval_token, last_error, created_at, updated_at
		 FROM analysis_runs WHERE run_id = $1`,
		runID,
	).Scan(&row.RunID, &row.Email, &row.DocID, &row.Status, &payloadJSON,
		&row.ApprovalToken, &row.LastError, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	if payloadJSON != nil {
		if err := json.Unmarshal(payloadJSON, &row.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode run payload: %w", err)
		}
	}
	return &row, nil
}

// ListRuns returns the latest view of the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, email, doc_id, status, payload, approval_token, last_error, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var row RunRow
		var payloadJSON []byte
		if err := rows.Scan(&row.RunID, &row.Email, &row.DocID, &row.Status, &payloadJSON,
			&row.ApprovalToken, &row.LastError, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if payloadJSON != nil {
			_ = json.Unmarshal(payloadJSON, &row.Payload)
		}
		runs = append(runs, row)
	}
	return runs, rows.Err()
}

// GetStatusLog returns every status transition for a run, oldest first.
func (db *DB) GetStatusLog(ctx context.Context, runID uuid.UUID) ([]StatusLogRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, status, payload, last_error, created_at
		 FROM run_status_log WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get status log: %w", err)
	}
	defer rows.Close()

	var log []StatusLogRow
	for rows.Next() {
		var row StatusLogRow
		var payloadJSON []byte
		if err := rows.Scan(&row.ID, &row.RunID, &row.Status, &payloadJSON, &row.LastError, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log row: %w", err)
		}
		if payloadJSON != nil {
			_ = json.Unmarshal(payloadJSON, &row.Payload)
		}
		log = append(log, row)
	}
	return log, rows.Err()
}

// SetApprovalToken stores the signed review token on the run.
func (db *DB) SetApprovalToken(ctx context.Context, runID uuid.UUID, token string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE analysis_runs SET approval_token = $1, updated_at = NOW() WHERE run_id = $2`,
		token, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to set approval token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

func marshalPayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return raw, nil
}

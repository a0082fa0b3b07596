package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordNodeEvent appends one node telemetry record. Events are
// append-only; retries of a node produce additional rows.
func (db *DB) RecordNodeEvent(ctx context.Context, runID uuid.UUID, nodeName string, startedAt, completedAt time.Time, stateBefore, stateAfter map[string]any, errText string) error {
	beforeJSON, err := marshalPayload(stateBefore)
	if err != nil {
		return err
	}
	afterJSON, err := marshalPayload(stateAfter)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO node_events (run_id, node_name, started_at, completed_at, state_before, state_after, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, nodeName, startedAt, completedAt, beforeJSON, afterJSON, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to record node event: %w", err)
	}
	return nil
}

// ListNodeEvents returns every node event for a run in recording order.
func (db *DB) ListNodeEvents(ctx context.Context, runID uuid.UUID) ([]NodeEventRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, node_name, started_at, completed_at, state_before, state_after, error
		 FROM node_events WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list node events: %w", err)
	}
	defer rows.Close()

	var events []NodeEventRow
	for rows.Next() {
		var row NodeEventRow
		var beforeJSON, afterJSON []byte
		if err := rows.Scan(&row.ID, &row.RunID, &row.NodeName, &row.StartedAt, &row.CompletedAt,
			&beforeJSON, &afterJSON, &row.Error); err != nil {
			return nil, fmt.Errorf("failed to scan node event row: %w", err)
		}
		if beforeJSON != nil {
			_ = json.Unmarshal(beforeJSON, &row.StateBefore)
		}
		if afterJSON != nil {
			_ = json.Unmarshal(afterJSON, &row.StateAfter)
		}
		events = append(events, row)
	}
	return events, rows.Err()
}

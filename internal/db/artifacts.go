package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveArtifact stores a JSON artifact for a run, replacing any earlier
// artifact of the same type.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, artifactType string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, artifact_type, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, artifact_type) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, artifactType, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", artifactType, err)
	}
	return nil
}

// GetArtifact retrieves an artifact's raw JSON by run ID and type. A
// missing artifact returns nil, nil.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, artifactType string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND artifact_type = $2`,
		runID, artifactType,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", artifactType, err)
	}
	return content, nil
}

// ListArtifacts returns every artifact stored for a run.
func (db *DB) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]ArtifactRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, artifact_type, content, created_at
		 FROM artifacts WHERE run_id = $1 ORDER BY artifact_type`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactRow
	for rows.Next() {
		var row ArtifactRow
		if err := rows.Scan(&row.RunID, &row.ArtifactType, &row.Content, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		artifacts = append(artifacts, row)
	}
	return artifacts, rows.Err()
}

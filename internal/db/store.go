package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/cv-align/internal/workflow"
)

// RunStore adapts DB to the pipeline's storage contract.
type RunStore struct {
	db *DB
}

// NewRunStore wraps the database for use by the pipeline.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) CreateRun(ctx context.Context, runID uuid.UUID, email, docID string, payload map[string]any) error {
	return s.db.CreateRun(ctx, runID, email, docID, payload)
}

func (s *RunStore) UpdateStatus(ctx context.Context, runID uuid.UUID, status workflow.Status, payload map[string]any, lastError string) error {
	return s.db.UpdateStatus(ctx, runID, string(status), payload, lastError)
}

func (s *RunStore) GetLatest(ctx context.Context, runID uuid.UUID) (*workflow.RunRecord, error) {
	row, err := s.db.GetLatest(ctx, runID)
	if err != nil || row == nil {
		return nil, err
	}
	return &workflow.RunRecord{
		RunID:         row.RunID,
		Email:         row.Email,
		DocID:         row.DocID,
		Status:        workflow.Status(row.Status),
		Payload:       row.Payload,
		ApprovalToken: row.ApprovalToken,
		LastError:     row.LastError,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func (s *RunStore) ClaimForResume(ctx context.Context, runID uuid.UUID) (bool, error) {
	return s.db.ClaimForResume(ctx, runID)
}

func (s *RunStore) SetApprovalToken(ctx context.Context, runID uuid.UUID, token string) error {
	return s.db.SetApprovalToken(ctx, runID, token)
}

func (s *RunStore) SaveArtifact(ctx context.Context, runID uuid.UUID, artifactType string, content any) error {
	return s.db.SaveArtifact(ctx, runID, artifactType, content)
}

func (s *RunStore) GetArtifact(ctx context.Context, runID uuid.UUID, artifactType string) ([]byte, error) {
	return s.db.GetArtifact(ctx, runID, artifactType)
}

func (s *RunStore) RecordNodeEvent(ctx context.Context, event workflow.NodeEvent) error {
	return s.db.RecordNodeEvent(ctx, event.RunID, event.NodeName, event.StartedAt, event.CompletedAt,
		event.StateBefore, event.StateAfter, event.Error)
}

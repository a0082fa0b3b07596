package db

import (
	"time"

	"github.com/google/uuid"
)

// RunRow is the latest persisted view of an analysis run.
type RunRow struct {
	RunID         uuid.UUID      `json:"run_id"`
	Email         string         `json:"email"`
	DocID         string         `json:"doc_id"`
	Status        string         `json:"status"`
	Payload       map[string]any `json:"payload,omitempty"`
	ApprovalToken string         `json:"-"`
	LastError     string         `json:"last_error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// StatusLogRow is one append-only status transition.
type StatusLogRow struct {
	ID        int64          `json:"id"`
	RunID     uuid.UUID      `json:"run_id"`
	Status    string         `json:"status"`
	Payload   map[string]any `json:"payload,omitempty"`
	LastError string         `json:"last_error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NodeEventRow is one recorded node invocation attempt.
type NodeEventRow struct {
	ID          int64          `json:"id"`
	RunID       uuid.UUID      `json:"run_id"`
	NodeName    string         `json:"node_name"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	StateBefore map[string]any `json:"state_before,omitempty"`
	StateAfter  map[string]any `json:"state_after,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ArtifactRow is one stored artifact, content left as raw JSON.
type ArtifactRow struct {
	RunID        uuid.UUID `json:"run_id"`
	ArtifactType string    `json:"artifact_type"`
	Content      []byte    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// VideoMetadataRow is one cached video with its optional analysis.
type VideoMetadataRow struct {
	VideoID   string    `json:"video_id"`
	Metadata  []byte    `json:"metadata"`
	Analysis  []byte    `json:"analysis,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Package workflow implements the CV/JD alignment pipeline: a fixed
// sequence of nodes threaded over a persisted state, with a durable
// suspension point at the human-approval gate.
package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/cv-align/internal/types"
)

// Status is the lifecycle state of a run.
type Status string

// Run lifecycle states. FAILED is reachable from any non-terminal state.
const (
	StatusPending          Status = "pending"
	StatusRunning          Status = "running"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// State is the mutable bag threaded through every node. Optional fields
// use pointers or nil slices; a populated field doubles as the
// idempotency guard for the node that produces it, which is what makes
// replay-on-resume safe.
type State struct {
	RunID             uuid.UUID `json:"run_id"`
	Email             string    `json:"email"`
	DocID             string    `json:"doc_id"`
	JobDescription    string    `json:"job_description"`
	JobDescriptionURL string    `json:"job_description_url,omitempty"`

	CVText string `json:"cv_text,omitempty"`
	JDText string `json:"jd_text,omitempty"`

	Alignment    *types.AlignmentAnalysis `json:"cv_analysis,omitempty"`
	Score        *types.CVScore           `json:"score,omitempty"`
	Improvements *types.ImprovementPlan   `json:"improvements,omitempty"`

	SkillQueries       []types.SkillQuery        `json:"skill_queries,omitempty"`
	ProjectSuggestions []types.ProjectSuggestion `json:"project_suggestions,omitempty"`
	MVPProjects        []types.MvpProject        `json:"mvp_projects,omitempty"`

	AwaitingApproval bool   `json:"awaiting_approval"`
	ApprovalToken    string `json:"approval_token,omitempty"`
	ApprovalGranted  bool   `json:"approval_granted"`

	// ChannelBoosts overrides the default tutorial-channel multipliers
	// for this run; keys are lowercase channel names.
	ChannelBoosts map[string]float64 `json:"preferred_channel_boosts,omitempty"`
}

// Snapshot renders the state as a plain JSON-serializable map, suitable
// for persistence and telemetry. Structured values are flattened to
// maps and lists; nothing non-serializable can leak through.
func (s *State) Snapshot() map[string]any {
	raw, err := json.Marshal(s)
	if err != nil {
		// State holds only JSON-encodable fields; this is unreachable
		// short of a programming error in the struct itself.
		return map[string]any{"run_id": s.RunID.String()}
	}
	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return map[string]any{"run_id": s.RunID.String()}
	}
	return snapshot
}

// StateFromPayload reconstructs a State from a persisted payload map.
func StateFromPayload(payload map[string]any) (*State, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to decode persisted state: %w", err)
	}
	return &st, nil
}

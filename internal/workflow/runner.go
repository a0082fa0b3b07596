package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// KickoffRequest is the validated input for a new run.
type KickoffRequest struct {
	Email             string
	DocID             string
	JobDescription    string
	JobDescriptionURL string

	// ChannelBoosts fully replaces the default tutorial-channel
	// multipliers when non-nil.
	ChannelBoosts map[string]float64
}

// Runner owns the run lifecycle around the graph: creating runs,
// invoking the node sequence, persisting terminal and suspended
// outcomes, and resuming suspended runs after approval.
type Runner struct {
	storage Storage
	graph   *Graph
}

// NewRunner builds a Runner over the injected dependencies.
func NewRunner(deps *Deps) *Runner {
	return &Runner{storage: deps.Storage, graph: NewGraph(deps)}
}

// Prepare creates the run record in pending state and returns the
// initial pipeline state. Execution is a separate step so callers can
// acknowledge the run before the pipeline starts.
func (r *Runner) Prepare(ctx context.Context, req KickoffRequest) (*State, error) {
	runID := uuid.New()
	st := &State{
		RunID:             runID,
		Email:             strings.TrimSpace(req.Email),
		DocID:             strings.TrimSpace(req.DocID),
		JobDescription:    req.JobDescription,
		JobDescriptionURL: strings.TrimSpace(req.JobDescriptionURL),
		ChannelBoosts:     req.ChannelBoosts,
	}

	if err := r.storage.CreateRun(ctx, runID, st.Email, st.DocID, st.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	log.Printf("run %s: created for %s", runID, st.Email)
	return st, nil
}

// Execute runs the pipeline over a prepared state until it completes,
// fails, or suspends at the approval gate.
func (r *Runner) Execute(ctx context.Context, st *State) (Status, error) {
	return r.invoke(ctx, st)
}

// Kickoff creates a run and executes the pipeline synchronously. The
// returned status is the run's state when the call returns.
func (r *Runner) Kickoff(ctx context.Context, req KickoffRequest) (uuid.UUID, Status, error) {
	st, err := r.Prepare(ctx, req)
	if err != nil {
		return uuid.Nil, "", err
	}
	status, err := r.invoke(ctx, st)
	return st.RunID, status, err
}

// Resume continues a run suspended at the approval gate. Resuming a run
// in any other state is a no-op that reports the current status, so
// duplicate approval clicks are harmless. A missing run yields
// ErrRunNotFound.
func (r *Runner) Resume(ctx context.Context, runID uuid.UUID) (Status, error) {
	record, err := r.storage.GetLatest(ctx, runID)
	if err != nil {
		return "", fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if record == nil {
		return "", fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if record.Status != StatusAwaitingApproval {
		log.Printf("run %s: resume requested in state %s; nothing to do", runID, record.Status)
		return record.Status, nil
	}

	claimed, err := r.storage.ClaimForResume(ctx, runID)
	if err != nil {
		return "", fmt.Errorf("failed to claim run %s for resume: %w", runID, err)
	}
	if !claimed {
		// Another approval click got here first; report whatever state
		// that resume left the run in.
		current, err := r.storage.GetLatest(ctx, runID)
		if err != nil {
			return "", fmt.Errorf("failed to load run %s: %w", runID, err)
		}
		if current == nil {
			return "", fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
		}
		log.Printf("run %s: resume already claimed; state is %s", runID, current.Status)
		return current.Status, nil
	}

	st, err := StateFromPayload(record.Payload)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", runID, err)
	}
	st.RunID = runID
	st.ApprovalGranted = true

	log.Printf("run %s: resuming after approval", runID)
	return r.invoke(ctx, st)
}

// invoke replays the graph over the state and persists the outcome.
// Node errors move the run to failed with the error recorded; the
// suspended outcome leaves the awaiting_approval status the approval
// node already wrote.
func (r *Runner) invoke(ctx context.Context, st *State) (Status, error) {
	outcome, err := r.graph.Invoke(ctx, st)
	if err != nil {
		log.Printf("run %s: pipeline failed: %v", st.RunID, err)
		if updateErr := r.storage.UpdateStatus(ctx, st.RunID, StatusFailed, st.Snapshot(), err.Error()); updateErr != nil {
			log.Printf("run %s: failed to record failure: %v", st.RunID, updateErr)
		}
		return StatusFailed, err
	}
	if outcome.Suspended {
		return StatusAwaitingApproval, nil
	}
	return StatusCompleted, nil
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-align/internal/workflow"
)

// runTimeout bounds one background pipeline invocation end to end.
const runTimeout = 15 * time.Minute

// CreateAnalysisRequest represents the request body for POST /v1/analyses
type CreateAnalysisRequest struct {
	Email             string             `json:"email" validate:"required,email"`
	DocID             string             `json:"doc_id" validate:"required"`
	JobDescription    string             `json:"job_description,omitempty"`
	JobDescriptionURL string             `json:"job_description_url,omitempty" validate:"omitempty,url"`
	PreferredChannels map[string]float64 `json:"preferred_channel_boosts,omitempty"`
}

// CreateAnalysisResponse represents the response for POST /v1/analyses
type CreateAnalysisResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// AnalysisResponse represents one run in status responses
type AnalysisResponse struct {
	RunID     string `json:"run_id"`
	Email     string `json:"email"`
	DocID     string `json:"doc_id"`
	Status    string `json:"status"`
	LastError string `json:"last_error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// handleCreateAnalysis starts a new analysis run
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.JobDescription == "" && req.JobDescriptionURL == "" {
		s.errorResponse(w, http.StatusBadRequest, "Either job_description or job_description_url is required")
		return
	}

	st, err := s.runner.Prepare(r.Context(), workflow.KickoffRequest{
		Email:             req.Email,
		DocID:             req.DocID,
		JobDescription:    req.JobDescription,
		JobDescriptionURL: req.JobDescriptionURL,
		ChannelBoosts:     req.PreferredChannels,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	// The pipeline outlives the HTTP request; progress is polled via
	// the status and events endpoints.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.runner.Execute(ctx, st); err != nil {
			log.Printf("run %s: background execution failed: %v", st.RunID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, CreateAnalysisResponse{
		RunID:  st.RunID.String(),
		Status: string(workflow.StatusPending),
	})
}

// handleListAnalyses lists recent runs
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	responses := make([]AnalysisResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, AnalysisResponse{
			RunID:     run.RunID.String(),
			Email:     run.Email,
			DocID:     run.DocID,
			Status:    run.Status,
			LastError: run.LastError,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
			UpdatedAt: run.UpdatedAt.Format(time.RFC3339),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": responses})
}

// handleGetAnalysis returns the latest view and status history of a run
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetLatest(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	history, err := s.db.GetStatusLog(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get status history")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"analysis": AnalysisResponse{
			RunID:     run.RunID.String(),
			Email:     run.Email,
			DocID:     run.DocID,
			Status:    run.Status,
			LastError: run.LastError,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
			UpdatedAt: run.UpdatedAt.Format(time.RFC3339),
		},
		"history": history,
	})
}

// handleListEvents returns the node telemetry trail of a run
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	events, err := s.db.ListNodeEvents(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list node events")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"events": events})
}

// handleListArtifacts returns every artifact of a run
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list artifacts")
		return
	}

	payload := make([]map[string]any, 0, len(artifacts))
	for _, artifact := range artifacts {
		payload = append(payload, map[string]any{
			"artifact_type": artifact.ArtifactType,
			"content":       json.RawMessage(artifact.Content),
			"created_at":    artifact.CreatedAt.Format(time.RFC3339),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": payload})
}

// handleGetArtifact returns one artifact by type
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}
	artifactType := r.PathValue("type")

	content, err := s.db.GetArtifact(r.Context(), runID, artifactType)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get artifact")
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "Artifact not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":        runID.String(),
		"artifact_type": artifactType,
		"content":       json.RawMessage(content),
	})
}

// handleApprove validates a review link and resumes the suspended run.
// Repeat clicks on an already-resumed run are reported as such rather
// than failing.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claimedRunID, err := s.approvals.Validate(token)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Invalid or expired approval link")
		return
	}

	if raw := r.URL.Query().Get("run_id"); raw != "" {
		queryRunID, err := uuid.Parse(raw)
		if err != nil || queryRunID != claimedRunID {
			s.errorResponse(w, http.StatusUnauthorized, "Approval link does not match this run")
			return
		}
	}

	run, err := s.db.GetLatest(r.Context(), claimedRunID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	// A rotated token (from a later re-send) invalidates older links.
	if run.ApprovalToken != token {
		s.errorResponse(w, http.StatusUnauthorized, "Approval link has been superseded")
		return
	}

	// Fast path only. Resume does the authoritative claim, so two
	// simultaneous clicks that both pass this check still resolve to a
	// single resume.
	if run.Status != string(workflow.StatusAwaitingApproval) {
		s.approvalPage(w, claimedRunID, run.Status)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.runner.Resume(ctx, claimedRunID); err != nil {
			log.Printf("run %s: resume after approval failed: %v", claimedRunID, err)
		}
	}()

	s.approvalPage(w, claimedRunID, string(workflow.StatusRunning))
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// approvalPage renders the small confirmation page behind review links.
func (s *Server) approvalPage(w http.ResponseWriter, runID uuid.UUID, status string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	message := "Approval received. Your CV is being updated and rescored; a completion email will follow."
	switch status {
	case string(workflow.StatusCompleted):
		message = "This run already completed. Check your inbox for the completion email."
	case string(workflow.StatusFailed):
		message = "This run failed before it could finish. Start a new analysis to retry."
	}
	fmt.Fprintf(w, `<!DOCTYPE html><html><body style="font-family: sans-serif; max-width: 480px; margin: 80px auto;">
<h2>%s</h2><p style="color: #888;">Run %s</p></body></html>`, message, runID)
}

// pathRunID parses the run_id path segment, writing the error response
// itself on failure.
func (s *Server) pathRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return uuid.Nil, false
	}
	return runID, true
}

// validationMessage flattens validator errors into a readable message.
func validationMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fmt.Sprintf("Validation failed on field '%s' (%s)", fieldError.Field(), fieldError.Tag())
		}
	}
	return "Validation failed"
}

package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/cv-align/internal/types"
)

// approvalEmailNode mints the signed review token, persists it, flips
// the run to awaiting_approval, and sends the review email. All four
// steps happen before the gate so a crash never strands a run in a
// state where the email went out but the token is unknown.
type approvalEmailNode struct {
	deps *Deps
}

func (n *approvalEmailNode) Name() string { return NodeApprovalEmail }

func (n *approvalEmailNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.AwaitingApproval && st.ApprovalToken != "" {
		log.Printf("run %s: approval email already sent", st.RunID)
		return Continue, nil
	}

	token, err := n.deps.Signer.Sign(st.RunID)
	if err != nil {
		return Continue, fmt.Errorf("failed to sign approval token: %w", err)
	}
	if err := n.deps.Storage.SetApprovalToken(ctx, st.RunID, token); err != nil {
		return Continue, fmt.Errorf("failed to persist approval token: %w", err)
	}
	st.ApprovalToken = token
	st.AwaitingApproval = true

	if err := n.deps.Storage.UpdateStatus(ctx, st.RunID, StatusAwaitingApproval, st.Snapshot(), ""); err != nil {
		return Continue, fmt.Errorf("failed to mark run awaiting approval: %w", err)
	}

	data := ApprovalEmailData{
		RunID:              st.RunID.String(),
		ReviewURL:          fmt.Sprintf("%s/v1/review/approve?run_id=%s&token=%s", strings.TrimRight(n.deps.FrontendBaseURL, "/"), st.RunID, token),
		DocURL:             docURL(st.DocID),
		UserEmail:          st.Email,
		Score:              st.Score,
		Analysis:           st.Alignment,
		Improvements:       st.Improvements,
		ProjectSuggestions: st.ProjectSuggestions,
		MVPProjects:        st.MVPProjects,
	}
	if st.Alignment != nil {
		data.CompanyName = st.Alignment.FirstCompanyName()
		data.JobTitle = st.Alignment.FirstJobTitle()
	}

	html, err := n.deps.Renderer.RenderApproval(data)
	if err != nil {
		return Continue, fmt.Errorf("failed to render approval email: %w", err)
	}
	subject := approvalSubject(data.CompanyName, data.JobTitle)
	if err := n.deps.Notifier.Send(ctx, st.Email, subject, html); err != nil {
		return Continue, fmt.Errorf("failed to send approval email: %w", err)
	}
	log.Printf("run %s: approval email sent to %s", st.RunID, st.Email)
	return Continue, nil
}

func approvalSubject(company, title string) string {
	switch {
	case company != "" && title != "":
		return fmt.Sprintf("CV review ready: %s at %s", title, company)
	case company != "":
		return fmt.Sprintf("CV review ready for %s", company)
	default:
		return "Your CV alignment review is ready"
	}
}

func docURL(docID string) string {
	if docID == "" {
		return ""
	}
	return "https://docs.google.com/document/d/" + docID + "/edit"
}

// waitApprovalNode is the gate. Until the reviewer approves, every
// invocation suspends; once approval is granted the pipeline proceeds
// into the edit-application phase.
type waitApprovalNode struct{}

func (n *waitApprovalNode) Name() string { return NodeWaitApproval }

func (n *waitApprovalNode) Run(_ context.Context, st *State) (Decision, error) {
	if st.ApprovalGranted {
		log.Printf("run %s: approval granted; continuing", st.RunID)
		return Continue, nil
	}
	log.Printf("run %s: suspending at approval gate", st.RunID)
	return Suspend, nil
}

// applyEditsNode writes the approved improvement plan into the CV
// document as a review block prepended to the body, then invalidates
// the cached CV text so rescoring re-exports the edited document.
type applyEditsNode struct {
	deps *Deps
}

func (n *applyEditsNode) Name() string { return NodeApplyEdits }

func (n *applyEditsNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.Improvements == nil || st.Improvements.IsEmpty() {
		log.Printf("run %s: no improvements to apply", st.RunID)
		return Continue, nil
	}

	block := formatImprovements(st.Improvements)
	log.Printf("run %s: applying %d reformulations, %d removals, %d additions",
		st.RunID, len(st.Improvements.Reformulations), len(st.Improvements.Removals), len(st.Improvements.Additions))
	if err := n.deps.Docs.PrependText(ctx, st.DocID, block); err != nil {
		return Continue, fmt.Errorf("failed to apply improvements to document: %w", err)
	}
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactAppliedImprovements, st.Improvements); err != nil {
		return Continue, fmt.Errorf("failed to persist applied improvements: %w", err)
	}

	// The document changed; the cached export no longer reflects it.
	st.CVText = ""
	return Continue, nil
}

// formatImprovements renders the improvement plan as the plain-text
// review block inserted at the top of the document.
func formatImprovements(plan *types.ImprovementPlan) string {
	var b strings.Builder
	b.WriteString("=== SUGGESTED IMPROVEMENTS (review and merge) ===\n\n")
	if len(plan.Reformulations) > 0 {
		b.WriteString("Reformulations:\n")
		for _, r := range plan.Reformulations {
			fmt.Fprintf(&b, "- Replace: %s\n  With: %s\n  Why: %s\n", r.Original, r.Improved, r.Reason)
		}
		b.WriteString("\n")
	}
	if len(plan.Removals) > 0 {
		b.WriteString("Removals:\n")
		for _, r := range plan.Removals {
			fmt.Fprintf(&b, "- Remove: %s\n  Why: %s\n", r.Text, r.Reason)
			if r.Alternative != "" {
				fmt.Fprintf(&b, "  Instead: %s\n", r.Alternative)
			}
		}
		b.WriteString("\n")
	}
	if len(plan.Additions) > 0 {
		b.WriteString("Additions:\n")
		for _, a := range plan.Additions {
			fmt.Fprintf(&b, "- Section %s: %s\n  Why: %s\n", a.Section, a.Content, a.Reason)
		}
		b.WriteString("\n")
	}
	b.WriteString("=== END SUGGESTED IMPROVEMENTS ===\n\n")
	return b.String()
}

// recalcScoreNode re-exports the edited CV, rescoring it against the
// same job description, then finishes the run and sends the completion
// notice. Notification failure is logged, not fatal: the run already
// completed.
type recalcScoreNode struct {
	deps *Deps
}

func (n *recalcScoreNode) Name() string { return NodeRecalcScore }

func (n *recalcScoreNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.CVText == "" {
		log.Printf("run %s: re-exporting edited CV doc %s", st.RunID, st.DocID)
		cvText, err := n.deps.Docs.ExportText(ctx, st.DocID)
		if err != nil {
			return Continue, fmt.Errorf("failed to re-export CV document: %w", err)
		}
		st.CVText = cvText
	}

	log.Printf("run %s: rescoring edited CV", st.RunID)
	score, err := n.deps.LLM.ScoreCV(ctx, st.CVText, st.JDText, st.Alignment)
	if err != nil {
		return Continue, fmt.Errorf("failed to rescore CV: %w", err)
	}
	st.Score = score
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactFinalScore, score); err != nil {
		return Continue, fmt.Errorf("failed to persist final score: %w", err)
	}

	st.AwaitingApproval = false
	if err := n.deps.Storage.UpdateStatus(ctx, st.RunID, StatusCompleted, st.Snapshot(), ""); err != nil {
		return Continue, fmt.Errorf("failed to mark run completed: %w", err)
	}
	log.Printf("run %s: completed (final score %d)", st.RunID, score.OverallScore)

	html, err := n.deps.Renderer.RenderCompletion(CompletionEmailData{
		RunID:        st.RunID.String(),
		DocURL:       docURL(st.DocID),
		OverallScore: score.OverallScore,
	})
	if err != nil {
		log.Printf("run %s: failed to render completion email: %v", st.RunID, err)
		return Continue, nil
	}
	if err := n.deps.Notifier.Send(ctx, st.Email, "Your CV update is complete", html); err != nil {
		log.Printf("run %s: failed to send completion email: %v", st.RunID, err)
	}
	return Continue, nil
}

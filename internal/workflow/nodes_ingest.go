package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/cv-align/internal/types"
)

// ingestNode marks the run as in progress and initializes the
// collection fields downstream nodes append to.
type ingestNode struct {
	deps *Deps
}

func (n *ingestNode) Name() string { return NodeIngest }

func (n *ingestNode) Run(ctx context.Context, st *State) (Decision, error) {
	log.Printf("run %s: ingest start", st.RunID)
	payload := map[string]any{
		"email":               st.Email,
		"doc_id":              st.DocID,
		"job_description":     st.JobDescription,
		"job_description_url": st.JobDescriptionURL,
	}
	if err := n.deps.Storage.UpdateStatus(ctx, st.RunID, StatusRunning, payload, ""); err != nil {
		return Continue, fmt.Errorf("failed to mark run running: %w", err)
	}
	if st.ProjectSuggestions == nil {
		st.ProjectSuggestions = []types.ProjectSuggestion{}
	}
	if st.MVPProjects == nil {
		st.MVPProjects = []types.MvpProject{}
	}
	return Continue, nil
}

// exportDocNode pulls the CV text out of the document store. Skipped
// when the text is already cached in state.
type exportDocNode struct {
	deps *Deps
}

func (n *exportDocNode) Name() string { return NodeExportDoc }

func (n *exportDocNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.CVText != "" {
		log.Printf("run %s: skipping CV export; already cached", st.RunID)
		return Continue, nil
	}
	log.Printf("run %s: exporting CV doc %s", st.RunID, st.DocID)
	cvText, err := n.deps.Docs.ExportText(ctx, st.DocID)
	if err != nil {
		return Continue, fmt.Errorf("failed to export CV document: %w", err)
	}
	st.CVText = cvText
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactCVText, cvText); err != nil {
		return Continue, fmt.Errorf("failed to persist CV text: %w", err)
	}
	log.Printf("run %s: CV export complete (%d chars)", st.RunID, len(cvText))
	return Continue, nil
}

// mergeJDNode resolves the job description: inline text wins, otherwise
// the URL is fetched and reduced to text. Neither is a fatal input
// validation failure.
type mergeJDNode struct {
	deps *Deps
}

func (n *mergeJDNode) Name() string { return NodeMergeJD }

func (n *mergeJDNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.JDText != "" {
		log.Printf("run %s: skipping JD merge; already resolved", st.RunID)
		return Continue, nil
	}
	jdText := strings.TrimSpace(st.JobDescription)
	if jdText == "" && st.JobDescriptionURL != "" {
		if n.deps.Fetcher == nil {
			return Continue, fmt.Errorf("job description URL given but no fetcher configured: %w", ErrNoJobDescription)
		}
		log.Printf("run %s: fetching JD from %s", st.RunID, st.JobDescriptionURL)
		fetched, err := n.deps.Fetcher.FetchText(ctx, st.JobDescriptionURL)
		if err != nil {
			return Continue, fmt.Errorf("failed to fetch job description: %w", err)
		}
		jdText = strings.TrimSpace(fetched)
	}
	if jdText == "" {
		return Continue, ErrNoJobDescription
	}
	st.JDText = jdText
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactJDText, jdText); err != nil {
		return Continue, fmt.Errorf("failed to persist JD text: %w", err)
	}
	log.Printf("run %s: merged JD text (%d chars)", st.RunID, len(jdText))
	return Continue, nil
}

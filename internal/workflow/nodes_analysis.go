package workflow

import (
	"context"
	"fmt"
	"log"
)

// analyzeAlignmentNode extracts the structured job-description analysis
// used to steer scoring and query building.
type analyzeAlignmentNode struct {
	deps *Deps
}

func (n *analyzeAlignmentNode) Name() string { return NodeAnalyzeAlignment }

func (n *analyzeAlignmentNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.Alignment != nil {
		log.Printf("run %s: skipping JD analysis; already present", st.RunID)
		return Continue, nil
	}
	log.Printf("run %s: running JD analysis", st.RunID)
	analysis, err := n.deps.LLM.AnalyzeAlignment(ctx, st.CVText, st.JDText)
	if err != nil {
		return Continue, fmt.Errorf("alignment analysis failed: %w", err)
	}
	st.Alignment = analysis
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactCVAnalysis, analysis); err != nil {
		return Continue, fmt.Errorf("failed to persist alignment analysis: %w", err)
	}
	log.Printf("run %s: JD analysis complete", st.RunID)
	return Continue, nil
}

// scoreCVNode scores the CV against the job description and asks for a
// concrete improvement plan in the same pass.
type scoreCVNode struct {
	deps *Deps
}

func (n *scoreCVNode) Name() string { return NodeScoreCV }

func (n *scoreCVNode) Run(ctx context.Context, st *State) (Decision, error) {
	if st.Score != nil && st.Improvements != nil {
		log.Printf("run %s: skipping scoring; already available", st.RunID)
		return Continue, nil
	}
	log.Printf("run %s: scoring CV", st.RunID)
	score, err := n.deps.LLM.ScoreCV(ctx, st.CVText, st.JDText, st.Alignment)
	if err != nil {
		return Continue, fmt.Errorf("CV scoring failed: %w", err)
	}
	improvements, err := n.deps.LLM.ImprovementPlan(ctx, st.CVText, st.JDText, score)
	if err != nil {
		return Continue, fmt.Errorf("improvement planning failed: %w", err)
	}
	st.Score = score
	st.Improvements = improvements
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactCVScore, score); err != nil {
		return Continue, fmt.Errorf("failed to persist CV score: %w", err)
	}
	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactCVImprovements, improvements); err != nil {
		return Continue, fmt.Errorf("failed to persist improvement plan: %w", err)
	}
	log.Printf("run %s: scoring complete (overall=%d)", st.RunID, score.OverallScore)
	return Continue, nil
}

// Package llm - extractor.go provides the structured extraction calls
// used by the analysis pipeline. Every call validates the model output
// against its JSON Schema before decoding, and retries transient
// failures with backoff.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/cv-align/internal/schemas"
	"github.com/jonathan/cv-align/internal/types"
)

const (
	maxAttempts    = 3
	initialBackoff = 2 * time.Second
)

// Extractor runs the structured LLM calls of the pipeline over a Client.
type Extractor struct {
	client Client
}

// NewExtractor wraps an LLM client.
func NewExtractor(client Client) *Extractor {
	return &Extractor{client: client}
}

// AnalyzeAlignment extracts company, title, skills, and critical
// requirements from the job description.
func (e *Extractor) AnalyzeAlignment(ctx context.Context, cvText, jdText string) (*types.AlignmentAnalysis, error) {
	prompt := fmt.Sprintf(`You are an expert recruiter. Analyze the job description below and extract:
- companyName: the hiring company name(s)
- jobTitle: the job title(s) as written
- hardSkills: concrete technologies, tools, languages, platforms required or preferred
- softSkills: interpersonal and working-style requirements
- criticalRequirements: hard constraints (clearance, degree, location, years of experience)

Return ONLY valid JSON with exactly these keys, each an array of strings.
No markdown, no explanation.

JOB DESCRIPTION:
%s

For context, the candidate CV:
%s`, jdText, truncate(cvText, 8000))

	var analysis types.AlignmentAnalysis
	if err := e.generateValidated(ctx, prompt, TierStandard, schemas.AlignmentAnalysis, &analysis); err != nil {
		return nil, fmt.Errorf("alignment analysis failed: %w", err)
	}
	return &analysis, nil
}

// ScoreCV scores the CV against the job description on a 0-100 scale
// per dimension, listing matched and missing skills.
func (e *Extractor) ScoreCV(ctx context.Context, cvText, jdText string, analysis *types.AlignmentAnalysis) (*types.CVScore, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert technical recruiter. Score the CV below against the job description. Use this extracted analysis of the role:
%s

Return ONLY valid JSON with keys:
- overallScore, hardSkillsScore, softSkillsScore: integers 0-100
- criticalReqScore: integer 0-100, or null when the role has no critical requirements
- matchedHardSkills, matchedSoftSkills, missingHardSkills, missingSoftSkills: arrays of strings
- strengths, weaknesses: arrays of short strings

Be strict: a skill is matched only when the CV shows concrete evidence of it.

CV:
%s

JOB DESCRIPTION:
%s`, analysisJSON, cvText, jdText)

	var score types.CVScore
	if err := e.generateValidated(ctx, prompt, TierStandard, schemas.CVScore, &score); err != nil {
		return nil, fmt.Errorf("cv scoring failed: %w", err)
	}
	return &score, nil
}

// ImprovementPlan proposes concrete CV edits (reformulations, removals,
// additions) that raise alignment with the role.
func (e *Extractor) ImprovementPlan(ctx context.Context, cvText, jdText string, score *types.CVScore) (*types.ImprovementPlan, error) {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert CV writer. Given the scoring results below, propose concrete edits to the CV that improve its alignment with the job description. Never invent experience the candidate does not have.

Scoring results:
%s

Return ONLY valid JSON with keys:
- reformulations: array of {original, improved, reason} rewriting existing lines
- removals: array of {text, reason, alternative} for content that hurts alignment
- additions: array of {section, content, reason} for missing but truthful content

CV:
%s

JOB DESCRIPTION:
%s`, scoreJSON, cvText, jdText)

	var plan types.ImprovementPlan
	if err := e.generateValidated(ctx, prompt, TierAdvanced, schemas.ImprovementPlan, &plan); err != nil {
		return nil, fmt.Errorf("improvement planning failed: %w", err)
	}
	return &plan, nil
}

// SynthesizeProjects combines missing skills and found tutorials into
// buildable MVP portfolio projects.
func (e *Extractor) SynthesizeProjects(ctx context.Context, missingSkills []string, catalog []types.TutorialCatalogEntry, cvText, jdText string) ([]types.MvpProject, error) {
	catalogJSON, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tutorial catalog: %w", err)
	}

	prompt := fmt.Sprintf(`You are a career coach. The candidate is missing these skills for the role: %s.

Available tutorials (one tutorial may anchor one project):
%s

Design 1-3 MVP portfolio projects. Each project should combine several missing skills, anchor on one tutorial from the catalog, and be personalized to the candidate's background.

Return ONLY a valid JSON array of objects with keys:
- tutorialTitle, tutorialUrl: the anchoring tutorial (from the catalog)
- skillsCombined: array of the missing skills the project exercises
- personalizationTip: how to adapt the tutorial to the candidate
- cvBlurb: one CV-ready bullet describing the finished project
- estimatedBuildTime: rough effort, e.g. "2 weekends"
- roleFitNote: why this project matters for the target role

CANDIDATE CV:
%s

JOB DESCRIPTION:
%s`, strings.Join(missingSkills, ", "), catalogJSON, truncate(cvText, 6000), truncate(jdText, 6000))

	var projects []types.MvpProject
	if err := e.generateValidated(ctx, prompt, TierAdvanced, schemas.MvpProjects, &projects); err != nil {
		return nil, fmt.Errorf("project synthesis failed: %w", err)
	}
	return projects, nil
}

// AnalyzeTutorial summarizes a tutorial video's metadata into a content
// analysis used to enrich the video cache. No schema is enforced; the
// fields are advisory.
func (e *Extractor) AnalyzeTutorial(ctx context.Context, video types.Video) (*types.TutorialAnalysis, error) {
	prompt := fmt.Sprintf(`Summarize this programming tutorial for a learner deciding whether to follow it.

Title: %s
Channel: %s
Description:
%s

Return ONLY valid JSON with keys:
- summary: 2-3 sentences on what the tutorial covers
- keyPoints: array of the main topics
- difficultyLevel: "beginner", "intermediate", or "advanced"
- prerequisites: array of assumed knowledge
- practicalTakeaways: array of concrete things built or learned`, video.Title, video.ChannelTitle, truncate(video.Description, 4000))

	raw, err := e.client.GenerateJSON(ctx, prompt, TierLite)
	if err != nil {
		return nil, fmt.Errorf("tutorial analysis failed: %w", err)
	}
	var analysis types.TutorialAnalysis
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode tutorial analysis: %w", err)
	}
	return &analysis, nil
}

// generateValidated runs one JSON generation with retries, validates
// the raw output against the named schema, and decodes it into out.
// Schema violations count as retryable: the model is simply asked again.
func (e *Extractor) generateValidated(ctx context.Context, prompt string, tier ModelTier, schemaName string, out any) error {
	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("llm: retrying %s (attempt %d/%d) after error: %v", schemaName, attempt, maxAttempts, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		raw, err := e.client.GenerateJSON(ctx, prompt, tier)
		if err != nil {
			lastErr = err
			continue
		}
		document := []byte(CleanJSONBlock(raw))
		if err := schemas.Validate(schemaName, document); err != nil {
			lastErr = err
			continue
		}
		if err := json.Unmarshal(document, out); err != nil {
			lastErr = fmt.Errorf("failed to decode %s response: %w", schemaName, err)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

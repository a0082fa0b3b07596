// Package types defines the shared data structures exchanged between the
// workflow, the LLM extractor, and the HTTP API.
package types

import "strings"

// AlignmentAnalysis is the structured job-description extraction used to
// guide downstream scoring.
type AlignmentAnalysis struct {
	CompanyName          []string `json:"companyName"`
	JobTitle             []string `json:"jobTitle"`
	HardSkills           []string `json:"hardSkills"`
	SoftSkills           []string `json:"softSkills"`
	CriticalRequirements []string `json:"criticalRequirements"`
}

// FirstJobTitle returns the first non-empty job title, or "".
func (a *AlignmentAnalysis) FirstJobTitle() string {
	return firstNonEmpty(a.JobTitle)
}

// FirstCompanyName returns the first non-empty company name, or "".
func (a *AlignmentAnalysis) FirstCompanyName() string {
	return firstNonEmpty(a.CompanyName)
}

// CVScore is the structured scoring response for a CV against a job
// description. Scores are 0-100.
type CVScore struct {
	OverallScore      int      `json:"overallScore"`
	HardSkillsScore   int      `json:"hardSkillsScore"`
	SoftSkillsScore   int      `json:"softSkillsScore"`
	MatchedHardSkills []string `json:"matchedHardSkills"`
	MatchedSoftSkills []string `json:"matchedSoftSkills"`
	MissingHardSkills []string `json:"missingHardSkills"`
	MissingSoftSkills []string `json:"missingSoftSkills"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	CriticalReqScore  *int     `json:"criticalReqScore,omitempty"`
}

// Reformulation rewrites an existing CV line.
type Reformulation struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
	Reason   string `json:"reason"`
}

// Removal drops a CV line that hurts alignment.
type Removal struct {
	Text        string `json:"text"`
	Reason      string `json:"reason"`
	Alternative string `json:"alternative"`
}

// Addition inserts new content into a CV section.
type Addition struct {
	Section string `json:"section"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// ImprovementPlan describes concrete CV edits proposed by the LLM.
type ImprovementPlan struct {
	Reformulations []Reformulation `json:"reformulations"`
	Removals       []Removal       `json:"removals"`
	Additions      []Addition      `json:"additions"`
}

// IsEmpty reports whether the plan contains no edits at all.
func (p *ImprovementPlan) IsEmpty() bool {
	return len(p.Reformulations) == 0 && len(p.Removals) == 0 && len(p.Additions) == 0
}

// SkillQuery pairs a missing skill with the search query built for it.
type SkillQuery struct {
	Skill string `json:"skill"`
	Query string `json:"query"`
}

// TutorialAnalysis is an optional enrichment summarizing a tutorial video.
type TutorialAnalysis struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"keyPoints"`
	DifficultyLevel    string   `json:"difficultyLevel"`
	Prerequisites      []string `json:"prerequisites"`
	PracticalTakeaways []string `json:"practicalTakeaways"`
}

// TutorialSuggestion recommends a single tutorial for a skill.
type TutorialSuggestion struct {
	TutorialTitle      string            `json:"tutorialTitle"`
	TutorialURL        string            `json:"tutorialUrl"`
	PersonalizationTip string            `json:"personalizationTip"`
	Analysis           *TutorialAnalysis `json:"analysis,omitempty"`
}

// ProjectSuggestion groups tutorial suggestions for one missing skill.
type ProjectSuggestion struct {
	Skill    string               `json:"skill"`
	Projects []TutorialSuggestion `json:"projects"`
}

// MvpProject is an LLM-synthesized project plan that combines several
// missing skills into one buildable portfolio piece.
type MvpProject struct {
	TutorialTitle      string   `json:"tutorialTitle"`
	TutorialURL        string   `json:"tutorialUrl"`
	SkillsCombined     []string `json:"skillsCombined"`
	PersonalizationTip string   `json:"personalizationTip"`
	CVBlurb            string   `json:"cvBlurb"`
	EstimatedBuildTime string   `json:"estimatedBuildTime"`
	RoleFitNote        string   `json:"roleFitNote"`
}

// TutorialCatalogEntry is the flattened tutorial row handed to the MVP
// synthesis prompt.
type TutorialCatalogEntry struct {
	Skill              string `json:"skill"`
	TutorialTitle      string `json:"tutorialTitle"`
	TutorialURL        string `json:"tutorialUrl"`
	PersonalizationTip string `json:"personalizationTip"`
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

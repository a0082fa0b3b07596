// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-align/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAlignment outputs a human-readable summary of the extracted
// job-description analysis.
func (p *Printer) PrintAlignment(analysis *types.AlignmentAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", analysis.FirstCompanyName()))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", analysis.FirstJobTitle()))
	sb.WriteString("\n")

	if len(analysis.HardSkills) > 0 {
		sb.WriteString("Hard skills:\n")
		appendList(&sb, analysis.HardSkills, maxItemsToShow)
		sb.WriteString("\n")
	}
	if len(analysis.SoftSkills) > 0 {
		sb.WriteString("Soft skills:\n")
		appendList(&sb, analysis.SoftSkills, 3)
		sb.WriteString("\n")
	}
	if len(analysis.CriticalRequirements) > 0 {
		sb.WriteString("Critical requirements:\n")
		appendList(&sb, analysis.CriticalRequirements, maxItemsToShow)
	}

	p.printBox("JOB DESCRIPTION ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScore outputs the CV score with matched and missing skills.
func (p *Printer) PrintScore(score *types.CVScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:      %d/100\n", score.OverallScore))
	sb.WriteString(fmt.Sprintf("Hard skills:  %d/100\n", score.HardSkillsScore))
	sb.WriteString(fmt.Sprintf("Soft skills:  %d/100\n", score.SoftSkillsScore))
	if score.CriticalReqScore != nil {
		sb.WriteString(fmt.Sprintf("Critical:     %d/100\n", *score.CriticalReqScore))
	}
	sb.WriteString("\n")

	if len(score.MissingHardSkills) > 0 {
		sb.WriteString("Missing hard skills:\n")
		appendList(&sb, score.MissingHardSkills, maxItemsToShow)
	}
	if len(score.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		appendList(&sb, score.Strengths, 3)
	}

	p.printBox("CV ALIGNMENT SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImprovements outputs a summary of the proposed CV edits.
func (p *Printer) PrintImprovements(plan *types.ImprovementPlan) {
	if plan == nil || plan.IsEmpty() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reformulations: %d\n", len(plan.Reformulations)))
	sb.WriteString(fmt.Sprintf("Removals:       %d\n", len(plan.Removals)))
	sb.WriteString(fmt.Sprintf("Additions:      %d\n", len(plan.Additions)))

	count := min(len(plan.Reformulations), 3)
	if count > 0 {
		sb.WriteString("\n")
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", plan.Reformulations[i].Improved))
		}
	}

	p.printBox("PROPOSED IMPROVEMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTutorials outputs the tutorial suggestions per missing skill.
func (p *Printer) PrintTutorials(suggestions []types.ProjectSuggestion) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder
	for i, suggestion := range suggestions {
		sb.WriteString(fmt.Sprintf("%s:\n", suggestion.Skill))
		count := min(len(suggestion.Projects), 3)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", suggestion.Projects[j].TutorialTitle))
		}
		if i < len(suggestions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TUTORIAL SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMVPProjects outputs the synthesized portfolio project ideas.
func (p *Printer) PrintMVPProjects(projects []types.MvpProject) {
	if len(projects) == 0 {
		return
	}

	var sb strings.Builder
	for i, project := range projects {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, project.TutorialTitle))
		if len(project.SkillsCombined) > 0 {
			skills := strings.Join(project.SkillsCombined, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
		}
		if project.EstimatedBuildTime != "" {
			sb.WriteString(fmt.Sprintf("    Effort: %s\n", project.EstimatedBuildTime))
		}
		if i < len(projects)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("MVP PROJECT IDEAS", strings.TrimSuffix(sb.String(), "\n"))
}

func appendList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

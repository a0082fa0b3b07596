package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-align/internal/observability"
	"github.com/jonathan/cv-align/internal/types"
	"github.com/jonathan/cv-align/internal/workflow"
)

var statusConfigPath string

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show recent runs, or the artifacts of one run",
	RunE:  runStatusCmd,
	Args:  cobra.MaximumNArgs(1),
}

func init() {
	statusCmd.Flags().StringVar(&statusConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	application, err := newApp(ctx, statusConfigPath)
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	defer application.close()

	if len(args) == 0 {
		runs, err := application.db.ListRuns(ctx, 20)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Printf("%s  %-18s %s  %s\n", run.RunID, run.Status, run.Email, run.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}
	run, err := application.db.GetLatest(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Printf("Run %s: %s\n", run.RunID, run.Status)
	if run.LastError != "" {
		fmt.Printf("Last error: %s\n", run.LastError)
	}

	printer := observability.NewPrinter(os.Stdout)
	printArtifact(ctx, application, runID, workflow.ArtifactCVAnalysis, func(raw []byte) {
		var analysis types.AlignmentAnalysis
		if json.Unmarshal(raw, &analysis) == nil {
			printer.PrintAlignment(&analysis)
		}
	})
	printArtifact(ctx, application, runID, workflow.ArtifactCVScore, func(raw []byte) {
		var score types.CVScore
		if json.Unmarshal(raw, &score) == nil {
			printer.PrintScore(&score)
		}
	})
	printArtifact(ctx, application, runID, workflow.ArtifactFinalScore, func(raw []byte) {
		var score types.CVScore
		if json.Unmarshal(raw, &score) == nil {
			printer.PrintScore(&score)
		}
	})
	printArtifact(ctx, application, runID, workflow.ArtifactCVImprovements, func(raw []byte) {
		var plan types.ImprovementPlan
		if json.Unmarshal(raw, &plan) == nil {
			printer.PrintImprovements(&plan)
		}
	})
	printArtifact(ctx, application, runID, workflow.ArtifactProjectSuggestions, func(raw []byte) {
		var suggestions []types.ProjectSuggestion
		if json.Unmarshal(raw, &suggestions) == nil {
			printer.PrintTutorials(suggestions)
		}
	})
	printArtifact(ctx, application, runID, workflow.ArtifactMVPProjects, func(raw []byte) {
		var projects []types.MvpProject
		if json.Unmarshal(raw, &projects) == nil {
			printer.PrintMVPProjects(projects)
		}
	})
	return nil
}

// printArtifact loads one artifact and renders it; missing artifacts
// are silently skipped so partial runs still print what they have.
func printArtifact(ctx context.Context, application *app, runID uuid.UUID, artifactType string, render func([]byte)) {
	raw, err := application.db.GetArtifact(ctx, runID, artifactType)
	if err != nil || raw == nil {
		return
	}
	render(raw)
}

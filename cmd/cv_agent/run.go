package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-align/internal/workflow"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Kick off one analysis run from the command line",
	Long: `Runs the alignment pipeline for a single CV and job description until it completes or suspends at the approval gate. The approval email carries the link that resumes the run.

Configuration can be loaded from a JSON file using --config; flags override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath string
	runEmail      string
	runDocID      string
	runJDFile     string
	runJDURL      string
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file")
	runCommand.Flags().StringVar(&runEmail, "email", "", "Candidate email for notifications (required)")
	runCommand.Flags().StringVar(&runDocID, "doc-id", "", "Google Docs document ID of the CV (required)")
	runCommand.Flags().StringVarP(&runJDFile, "jd", "j", "", "Path to job description text file (mutually exclusive with --jd-url)")
	runCommand.Flags().StringVar(&runJDURL, "jd-url", "", "URL to fetch the job description from (mutually exclusive with --jd)")
	_ = runCommand.MarkFlagRequired("email")
	_ = runCommand.MarkFlagRequired("doc-id")
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(_ *cobra.Command, _ []string) error {
	if runJDFile != "" && runJDURL != "" {
		return fmt.Errorf("--jd and --jd-url are mutually exclusive")
	}
	if runJDFile == "" && runJDURL == "" {
		return fmt.Errorf("either --jd or --jd-url is required")
	}

	jobDescription := ""
	if runJDFile != "" {
		data, err := os.ReadFile(runJDFile)
		if err != nil {
			return fmt.Errorf("failed to read job description file: %w", err)
		}
		jobDescription = string(data)
	}

	ctx := context.Background()
	application, err := newApp(ctx, runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	defer application.close()

	runID, status, err := application.runner.Kickoff(ctx, workflow.KickoffRequest{
		Email:             runEmail,
		DocID:             runDocID,
		JobDescription:    jobDescription,
		JobDescriptionURL: runJDURL,
	})
	if err != nil {
		return fmt.Errorf("run %s failed: %w", runID, err)
	}

	fmt.Printf("Run %s: %s\n", runID, status)
	if status == workflow.StatusAwaitingApproval {
		fmt.Println("An approval email was sent; the run resumes when the link is clicked.")
	}
	return nil
}

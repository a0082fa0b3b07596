package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var resumeConfigPath string

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Resume a run suspended at the approval gate",
	Long:  `Approves a suspended run directly, bypassing the email link. Useful when the approval email was lost.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeCmd,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(resumeCmd)
}

func runResumeCmd(_ *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}

	ctx := context.Background()
	application, err := newApp(ctx, resumeConfigPath)
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	defer application.close()

	status, err := application.runner.Resume(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Run %s: %s\n", runID, status)
	return nil
}

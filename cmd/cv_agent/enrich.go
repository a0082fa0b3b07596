package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-align/internal/llm"
	"github.com/jonathan/cv-align/internal/types"
)

var (
	enrichConfigPath string
	enrichLimit      int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich-videos",
	Short: "Backfill content analyses for cached tutorial videos",
	Long: `Walks the video metadata cache and attaches an LLM content analysis
(summary, difficulty, prerequisites) to every video that does not have
one yet. Safe to interrupt and re-run; already-analyzed videos are
skipped.`,
	RunE: runEnrichCmd,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichConfigPath, "config", "", "Path to config.json file")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "Stop after analyzing this many videos (0 = no limit)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrichCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	application, err := newApp(ctx, enrichConfigPath)
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	defer application.close()

	extractor := llm.NewExtractor(application.llmClient)

	analyzed := 0
	cursor := ""
	for {
		rows, next, err := application.db.ListVideosMissingAnalysis(ctx, cursor, 50)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if enrichLimit > 0 && analyzed >= enrichLimit {
				fmt.Printf("Analyzed %d videos (limit reached)\n", analyzed)
				return nil
			}
			var video types.Video
			if err := json.Unmarshal(row.Metadata, &video); err != nil {
				log.Printf("skipping video %s: bad metadata: %v", row.VideoID, err)
				continue
			}
			analysis, err := extractor.AnalyzeTutorial(ctx, video)
			if err != nil {
				log.Printf("skipping video %s: %v", row.VideoID, err)
				continue
			}
			if err := application.db.SetVideoAnalysis(ctx, row.VideoID, analysis); err != nil {
				return err
			}
			analyzed++
		}
		if next == "" {
			break
		}
		cursor = next
	}
	fmt.Printf("Analyzed %d videos\n", analyzed)
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-align/internal/server"
)

var (
	serveConfigPath string
	serveListenAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for creating analysis runs, polling their progress, and handling approval links.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Address to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	application, err := newApp(context.Background(), serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	defer application.close()

	listen := application.cfg.ListenAddr
	if serveListenAddr != "" {
		listen = serveListenAddr
	}

	srv := server.New(server.Config{
		ListenAddr: listen,
		DB:         application.db,
		Runner:     application.runner,
		Approvals:  application.approvals,
	})
	return srv.Start()
}

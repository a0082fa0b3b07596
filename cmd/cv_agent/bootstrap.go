package main

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	appcfg "github.com/jonathan/cv-align/internal/config"
	"github.com/jonathan/cv-align/internal/db"
	"github.com/jonathan/cv-align/internal/fetch"
	"github.com/jonathan/cv-align/internal/gdocs"
	"github.com/jonathan/cv-align/internal/llm"
	"github.com/jonathan/cv-align/internal/mailer"
	"github.com/jonathan/cv-align/internal/ranking"
	"github.com/jonathan/cv-align/internal/server"
	"github.com/jonathan/cv-align/internal/videosearch"
	"github.com/jonathan/cv-align/internal/workflow"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg       *appcfg.Config
	db        *db.DB
	runner    *workflow.Runner
	approvals *server.ApprovalTokenService
	llmClient llm.Client
}

// newApp wires the full dependency graph from configuration.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := appcfg.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var googleOpts []option.ClientOption
	if cfg.GoogleCredsFile != "" {
		googleOpts = append(googleOpts, option.WithCredentialsFile(cfg.GoogleCredsFile))
	}

	docsSvc, err := gdocs.NewService(ctx, googleOpts...)
	if err != nil {
		database.Close()
		return nil, err
	}

	renderer, err := mailer.NewRenderer()
	if err != nil {
		database.Close()
		return nil, err
	}
	notifier, err := buildNotifier(ctx, cfg, googleOpts)
	if err != nil {
		database.Close()
		return nil, err
	}

	var videos workflow.VideoSearch
	if cfg.YouTubeAPIKey != "" {
		quota := videosearch.NewDailyQuota(cfg.YouTubeQuotaBudget)
		svc, err := videosearch.NewService(ctx, cfg.YouTubeAPIKey, quota, database, database)
		if err != nil {
			database.Close()
			return nil, err
		}
		videos = svc
	}

	jwtCfg, err := appcfg.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, err
	}
	approvals := server.NewApprovalTokenService(jwtCfg)

	jobFetcher := fetch.NewJobFetcher()
	jobFetcher.UseBrowser = cfg.UseBrowser

	deps := &workflow.Deps{
		Storage:         db.NewRunStore(database),
		LLM:             llm.NewExtractor(llmClient),
		Docs:            docsSvc,
		Notifier:        notifier,
		Renderer:        renderer,
		Videos:          videos,
		Fetcher:         jobFetcher,
		Ranking:         ranking.NewService(nil),
		Signer:          approvals,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}

	return &app{
		cfg:       cfg,
		db:        database,
		runner:    workflow.NewRunner(deps),
		approvals: approvals,
		llmClient: llmClient,
	}, nil
}

// buildNotifier prefers the Gmail API and falls back to SMTP when only
// SMTP credentials are configured.
func buildNotifier(ctx context.Context, cfg *appcfg.Config, googleOpts []option.ClientOption) (workflow.Notifier, error) {
	var primary, secondary mailer.Sender

	if cfg.GoogleCredsFile != "" {
		gmailSender, err := mailer.NewGmailSender(ctx, cfg.SenderEmail, googleOpts...)
		if err != nil {
			return nil, err
		}
		primary = gmailSender
	}
	if cfg.SMTPHost != "" {
		secondary = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
	}
	if primary == nil && secondary == nil {
		return nil, fmt.Errorf("no mail transport configured: set google_creds_file or smtp_host")
	}
	return mailer.NewFallbackSender(primary, secondary), nil
}

// close releases the app's resources.
func (a *app) close() {
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Package config provides configuration loading and validation for the
// analyzer service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the application configuration. All fields are optional in
// the JSON file; missing values fall back to environment variables or
// defaults.
type Config struct {
	// Services
	DatabaseURL     string `json:"database_url,omitempty"`      // PostgreSQL connection URL
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`    // Gemini API key
	YouTubeAPIKey   string `json:"youtube_api_key,omitempty"`   // YouTube Data API key
	GoogleCredsFile string `json:"google_creds_file,omitempty"` // Service-account JSON for Docs/Drive/Gmail

	// Mail
	SenderEmail  string `json:"sender_email,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUsername string `json:"smtp_username,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`

	// Server
	ListenAddr      string `json:"listen_addr,omitempty"`
	FrontendBaseURL string `json:"frontend_base_url,omitempty"` // Public base for review links

	// Limits
	YouTubeQuotaBudget int  `json:"youtube_quota_budget,omitempty"` // Daily API unit budget
	UseBrowser         bool `json:"use_browser,omitempty"`          // Headless browser for SPA job boards
	Verbose            bool `json:"verbose,omitempty"`
}

// Load reads a JSON config file, then overlays environment variables.
// An empty path skips the file and uses the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overlays environment variables onto unset fields.
func (c *Config) applyEnv() {
	setIfEmpty(&c.DatabaseURL, "DATABASE_URL")
	setIfEmpty(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setIfEmpty(&c.YouTubeAPIKey, "YOUTUBE_API_KEY")
	setIfEmpty(&c.GoogleCredsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setIfEmpty(&c.SenderEmail, "SENDER_EMAIL")
	setIfEmpty(&c.SMTPHost, "SMTP_HOST")
	setIfEmpty(&c.SMTPUsername, "SMTP_USERNAME")
	setIfEmpty(&c.SMTPPassword, "SMTP_PASSWORD")
	setIfEmpty(&c.ListenAddr, "LISTEN_ADDR")
	setIfEmpty(&c.FrontendBaseURL, "FRONTEND_BASE_URL")

	if c.SMTPPort == 0 {
		if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
			c.SMTPPort = port
		}
	}
	if c.YouTubeQuotaBudget == 0 {
		if budget, err := strconv.Atoi(os.Getenv("YOUTUBE_QUOTA_BUDGET")); err == nil {
			c.YouTubeQuotaBudget = budget
		}
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.FrontendBaseURL == "" {
		c.FrontendBaseURL = "http://localhost:8080"
	}
}

// Validate checks the fields every run needs.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database_url is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: gemini_api_key is required")
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("config error: sender_email is required")
	}
	if c.SMTPPort < 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("config error: smtp_port out of range: %d", c.SMTPPort)
	}
	return nil
}

func setIfEmpty(field *string, envKey string) {
	if *field == "" {
		*field = os.Getenv(envKey)
	}
}

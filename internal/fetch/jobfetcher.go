// Package fetch - jobfetcher.go resolves a job-posting URL to plain text.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"
)

// JobFetcher retrieves a job description from a job-board URL,
// detecting the platform for better content selectors and falling back
// to headless-browser rendering for JavaScript-heavy pages.
type JobFetcher struct {
	options        *Options
	browserTimeout time.Duration
	// UseBrowser disables the headless fallback when false; useful in
	// environments without Chrome.
	UseBrowser bool
}

// NewJobFetcher builds a fetcher with default HTTP options and the
// browser fallback enabled.
func NewJobFetcher() *JobFetcher {
	return &JobFetcher{
		options:        DefaultOptions(),
		browserTimeout: 30 * time.Second,
		UseBrowser:     true,
	}
}

// FetchText downloads the page and extracts the job-description text.
func (f *JobFetcher) FetchText(ctx context.Context, urlStr string) (string, error) {
	platform := DetectPlatform(urlStr)
	selectors := JobPostingSelectors()
	if platform != PlatformUnknown {
		selectors = append(PlatformContentSelectors(platform), selectors...)
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return "", fmt.Errorf("failed to fetch job posting: %w", err)
	}

	text, err := ExtractMainText(result.HTML, selectors, PlatformNoiseSelectors(platform)...)
	if err != nil {
		return "", fmt.Errorf("failed to extract job posting text: %w", err)
	}

	if ShouldUseBrowser(text) && f.UseBrowser {
		log.Printf("fetch: %s content too short (%d chars), rendering in browser", urlStr, len(text))
		html, err := WithBrowser(ctx, urlStr, f.browserTimeout)
		if err != nil {
			// Keep whatever the plain fetch produced rather than
			// failing outright on a missing Chrome install.
			log.Printf("fetch: browser rendering failed for %s: %v", urlStr, err)
			return text, nil
		}
		rendered, err := ExtractMainText(html, selectors, PlatformNoiseSelectors(platform)...)
		if err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}
	return text, nil
}

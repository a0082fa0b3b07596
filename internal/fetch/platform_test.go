package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Platform
	}{
		{"greenhouse boards", "https://boards.greenhouse.io/acme/jobs/7063751", PlatformGreenhouse},
		{"greenhouse job-boards", "https://job-boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"lever", "https://jobs.lever.co/acme/platform-engineer", PlatformLever},
		{"workday tenant", "https://acme.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"workday", "https://workday.com/jobs", PlatformWorkday},
		{"company site", "https://example.com/careers/backend", PlatformUnknown},
		{"linkedin", "https://linkedin.com/jobs/123", PlatformUnknown},
		{"garbage", "://not a url", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	greenhouse := PlatformContentSelectors(PlatformGreenhouse)
	assert.Contains(t, greenhouse, ".job__description.body")

	lever := PlatformContentSelectors(PlatformLever)
	assert.Contains(t, lever, ".posting-description")

	// Unknown platforms fall back to the generic job selectors.
	unknown := PlatformContentSelectors(PlatformUnknown)
	assert.Contains(t, unknown, ".job-description")
	assert.Contains(t, unknown, "main")
}

func TestPlatformNoiseSelectors(t *testing.T) {
	greenhouse := PlatformNoiseSelectors(PlatformGreenhouse)
	assert.Contains(t, greenhouse, "form")
	assert.Contains(t, greenhouse, ".application--wrapper")

	unknown := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, unknown, ".cookie-banner")
	assert.NotContains(t, unknown, ".application--wrapper")
}

func TestPlatformNoiseSelectors_CommonSetUnchanged(t *testing.T) {
	before := len(commonNoiseSelectors)
	_ = PlatformNoiseSelectors(PlatformGreenhouse)
	_ = PlatformNoiseSelectors(PlatformWorkday)
	assert.Len(t, commonNoiseSelectors, before)
}

package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-align/internal/types"
)

func newTestService() *Service {
	svc := NewService(nil)
	svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func tutorialVideo(overrides func(*types.Video)) types.Video {
	v := types.Video{
		VideoID:      "abc123",
		Title:        "Go tutorial project from scratch",
		Description:  "Hands on course for beginners",
		URL:          "https://youtube.com/watch?v=abc123",
		ChannelTitle: "Some Channel",
		Duration:     "PT1H30M",
		ViewCount:    100000,
		LikeCount:    5000,
		CommentCount: 200,
		PublishedAt:  "2025-06-01T00:00:00Z",
	}
	if overrides != nil {
		overrides(&v)
	}
	return v
}

func TestScore_RejectsShortVideos(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		duration string
		rejected bool
	}{
		{"ten minutes", "PT10M", true},
		{"just under floor", "PT14M59S", true},
		{"exactly fifteen minutes", "PT15M", false},
		{"ninety minutes", "PT1H30M", false},
		{"empty duration", "", true},
		{"malformed duration", "1:30:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tutorialVideo(func(v *types.Video) { v.Duration = tt.duration })
			_, ok := svc.Score(v, "go", nil)
			assert.Equal(t, !tt.rejected, ok)
		})
	}
}

func TestScore_MoreViewsScoreHigher(t *testing.T) {
	svc := newTestService()

	low := tutorialVideo(func(v *types.Video) {
		v.ViewCount = 10000
		v.LikeCount = 500
	})
	high := tutorialVideo(func(v *types.Video) {
		v.ViewCount = 1000000
		v.LikeCount = 50000
	})

	lowScore, ok := svc.Score(low, "go", nil)
	require.True(t, ok)
	highScore, ok := svc.Score(high, "go", nil)
	require.True(t, ok)
	assert.Greater(t, highScore, lowScore)
}

func TestScore_IdealDurationBeatsExtremes(t *testing.T) {
	svc := newTestService()

	ideal := tutorialVideo(func(v *types.Video) { v.Duration = "PT1H30M" })
	marathon := tutorialVideo(func(v *types.Video) { v.Duration = "PT11H" })

	idealScore, ok := svc.Score(ideal, "go", nil)
	require.True(t, ok)
	marathonScore, ok := svc.Score(marathon, "go", nil)
	require.True(t, ok)
	assert.Greater(t, idealScore, marathonScore)
}

func TestScore_OldVideosDecay(t *testing.T) {
	svc := newTestService()

	recent := tutorialVideo(func(v *types.Video) { v.PublishedAt = "2025-06-01T00:00:00Z" })
	ancient := tutorialVideo(func(v *types.Video) { v.PublishedAt = "2014-06-01T00:00:00Z" })

	recentScore, ok := svc.Score(recent, "go", nil)
	require.True(t, ok)
	ancientScore, ok := svc.Score(ancient, "go", nil)
	require.True(t, ok)
	assert.Greater(t, recentScore, ancientScore)
}

func TestScore_MalformedTimestampFailsOpen(t *testing.T) {
	svc := newTestService()

	clean := tutorialVideo(nil)
	malformed := tutorialVideo(func(v *types.Video) { v.PublishedAt = "yesterday" })

	cleanScore, ok := svc.Score(clean, "go", nil)
	require.True(t, ok)
	malformedScore, ok := svc.Score(malformed, "go", nil)
	require.True(t, ok)
	// A recent video and an unparseable timestamp both get decay 1.0.
	assert.InDelta(t, cleanScore, malformedScore, 0.0001)
}

func TestScore_ComparisonContentPenalized(t *testing.T) {
	svc := newTestService()

	tutorial := tutorialVideo(nil)
	comparison := tutorialVideo(func(v *types.Video) {
		v.Title = "Go tutorial project from scratch vs Rust"
	})

	tutorialScore, ok := svc.Score(tutorial, "go", nil)
	require.True(t, ok)
	comparisonScore, ok := svc.Score(comparison, "go", nil)
	require.True(t, ok)
	assert.Greater(t, tutorialScore, comparisonScore)
}

func TestScore_DefaultChannelBoostApplies(t *testing.T) {
	svc := newTestService()

	plain := tutorialVideo(func(v *types.Video) { v.ChannelTitle = "Random Uploads" })
	boosted := tutorialVideo(func(v *types.Video) { v.ChannelTitle = "freeCodeCamp.org" })

	plainScore, ok := svc.Score(plain, "go", nil)
	require.True(t, ok)
	boostedScore, ok := svc.Score(boosted, "go", nil)
	require.True(t, ok)
	assert.Greater(t, boostedScore, plainScore)
}

func TestScore_CallerBoostsReplaceDefaults(t *testing.T) {
	svc := newTestService()

	video := tutorialVideo(func(v *types.Video) { v.ChannelTitle = "freeCodeCamp.org" })
	overrides := sanitizeBoosts(map[string]float64{"Some Other Channel": 2.0})

	withDefaults, ok := svc.Score(video, "go", nil)
	require.True(t, ok)
	withOverrides, ok := svc.Score(video, "go", overrides)
	require.True(t, ok)
	// The override map does not list freeCodeCamp, so its default
	// boost disappears entirely rather than merging.
	assert.Less(t, withOverrides, withDefaults)
}

func TestRank_OrdersByScoreAndLimits(t *testing.T) {
	svc := newTestService()

	videos := []types.Video{
		tutorialVideo(func(v *types.Video) {
			v.VideoID = "small"
			v.ViewCount = 1000
			v.LikeCount = 50
		}),
		tutorialVideo(func(v *types.Video) {
			v.VideoID = "big"
			v.ViewCount = 2000000
			v.LikeCount = 100000
		}),
		tutorialVideo(func(v *types.Video) {
			v.VideoID = "short"
			v.Duration = "PT5M"
		}),
		tutorialVideo(func(v *types.Video) {
			v.VideoID = "medium"
			v.ViewCount = 50000
			v.LikeCount = 2500
		}),
	}

	ranked := svc.Rank(videos, 2, "go", nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, "big", ranked[0].Video.VideoID)
	assert.Equal(t, "medium", ranked[1].Video.VideoID)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_ZeroLimitReturnsAll(t *testing.T) {
	svc := newTestService()

	videos := []types.Video{
		tutorialVideo(func(v *types.Video) { v.VideoID = "a" }),
		tutorialVideo(func(v *types.Video) { v.VideoID = "b" }),
	}

	ranked := svc.Rank(videos, 0, "go", nil)
	assert.Len(t, ranked, 2)
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"PT15M", 900},
		{"PT1H30M", 5400},
		{"PT2H", 7200},
		{"PT45S", 45},
		{"P1DT2H", 93600},
		{"", 0},
		{"90 minutes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseDurationSeconds(tt.input))
		})
	}
}

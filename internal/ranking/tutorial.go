// Package ranking scores tutorial videos against a target skill using
// engagement, duration, recency, and content-signal heuristics.
package ranking

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cv-align/internal/types"
)

// Heuristic constants. Durations are in seconds, ages in days.
const (
	minDurationSeconds   = 15 * 60
	idealDurationSeconds = 90 * 60
	durationSpanSeconds  = 70 * 60

	freshAgeDays      = 365 * 3
	decayHalfLifeDays = 365 * 4
)

var (
	isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	comparisonRe  = regexp.MustCompile(`\bvs\b|versus|compare`)
)

// semanticKeywords are tutorial signals matched against title+description.
// Multi-word entries are counted as phrases with a larger per-hit bonus.
var semanticKeywords = []string{
	"tutorial",
	"course",
	"full course",
	"project",
	"end to end",
	"from scratch",
	"hands on",
	"hands-on",
	"beginner",
	"for beginners",
}

// RankedVideo pairs a video with its computed score.
type RankedVideo struct {
	Video types.Video
	Score float64
}

// Service scores and ranks tutorial videos. The zero value is not
// usable; construct with NewService.
type Service struct {
	defaultBoosts map[string]float64
	now           func() time.Time
}

// NewService returns a Service using the given default channel boosts,
// falling back to the package defaults when nil.
func NewService(defaultBoosts map[string]float64) *Service {
	if defaultBoosts == nil {
		defaultBoosts = DefaultChannelBoostMap()
	}
	return &Service{
		defaultBoosts: sanitizeBoosts(defaultBoosts),
		now:           time.Now,
	}
}

// Rank scores the given videos and returns up to limit of them ordered
// by descending score. Videos that are rejected (too short) are left
// out. Ties keep the input order.
func (s *Service) Rank(videos []types.Video, limit int, skillName string, channelBoosts map[string]float64) []RankedVideo {
	var boosts map[string]float64
	if channelBoosts != nil {
		boosts = sanitizeBoosts(channelBoosts)
	}

	ranked := make([]RankedVideo, 0, len(videos))
	for _, video := range videos {
		score, ok := s.Score(video, skillName, boosts)
		if !ok {
			continue
		}
		ranked = append(ranked, RankedVideo{Video: video, Score: score})
	}

	// Stable sort so equal scores preserve search-result order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Score computes the heuristic score for one video. The second return
// value is false when the video is rejected outright (shorter than the
// minimum tutorial duration, including unparseable durations).
func (s *Service) Score(video types.Video, skillName string, channelBoosts map[string]float64) (float64, bool) {
	durationSeconds := parseDurationSeconds(video.Duration)
	durationMultiplier := durationBoost(durationSeconds)
	if durationMultiplier == 0 {
		return 0, false
	}

	views := max(video.ViewCount, 0)
	likes := max(video.LikeCount, 0)
	comments := max(video.CommentCount, 0)
	likeRatio := 0.0
	if views > 0 {
		likeRatio = float64(likes) / float64(views)
	}

	base := likeRatio*10000 + float64(views)/1000 + float64(comments)*2
	timeMultiplier := s.timeDecay(video.PublishedAt)
	semanticMultiplier := semanticBoost(video.Title, video.Description, skillName)
	channelMultiplier := s.channelBoost(video.ChannelTitle, channelBoosts)

	return base * durationMultiplier * timeMultiplier * channelMultiplier * semanticMultiplier, true
}

// channelBoost looks up the channel multiplier case-insensitively. A
// caller-supplied map fully replaces the defaults for the run.
func (s *Service) channelBoost(channelTitle string, channelBoosts map[string]float64) float64 {
	name := strings.ToLower(strings.TrimSpace(channelTitle))
	if name == "" {
		return 1.0
	}
	boosts := s.defaultBoosts
	if channelBoosts != nil {
		boosts = channelBoosts
	}
	if boost, ok := boosts[name]; ok {
		return boost
	}
	return 1.0
}

// semanticBoost rewards tutorial-signal vocabulary and the target skill
// name, and penalizes comparison content.
func semanticBoost(title, description, skillName string) float64 {
	text := strings.ToLower(title + " " + description)

	hits := 0
	phrases := 0
	for _, keyword := range semanticKeywords {
		if !strings.Contains(text, keyword) {
			continue
		}
		if strings.Contains(keyword, " ") {
			phrases++
		} else {
			hits++
		}
	}

	boost := 1.0
	if skillName != "" && strings.Contains(text, strings.ToLower(skillName)) {
		boost = 1.10
	}
	boost *= 1 + math.Min(0.12, float64(hits)*0.02)
	boost *= 1 + math.Min(0.10, float64(phrases)*0.05)
	if comparisonRe.MatchString(text) {
		boost *= 0.95
	}
	return boost
}

// timeDecay returns 1.0 for videos younger than the fresh-age window and
// applies exponential half-life decay to the excess age beyond it.
// Malformed timestamps fail open with no penalty.
func (s *Service) timeDecay(publishedAt string) float64 {
	if publishedAt == "" {
		return 1.0
	}
	published, err := parseTimestamp(publishedAt)
	if err != nil {
		return 1.0
	}
	ageDays := int(s.now().UTC().Sub(published).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	over := ageDays - freshAgeDays
	if over <= 0 {
		return 1.0
	}
	return math.Exp(-math.Ln2 * float64(over) / float64(decayHalfLifeDays))
}

// durationBoost is a triangular preference centered on the ideal
// duration. Anything below the minimum duration is rejected (0).
func durationBoost(seconds int) float64 {
	if seconds < minDurationSeconds {
		return 0
	}
	deviation := math.Abs(float64(seconds - idealDurationSeconds))
	x := math.Max(0, 1-deviation/float64(durationSpanSeconds))
	return 0.95 + 0.15*x
}

// parseDurationSeconds converts an ISO-8601 duration like "PT1H30M" to
// seconds. Malformed input yields 0, which the duration floor rejects.
func parseDurationSeconds(isoDuration string) int {
	if isoDuration == "" {
		return 0
	}
	match := isoDurationRe.FindStringSubmatch(strings.ToUpper(isoDuration))
	if match == nil {
		return 0
	}
	days := atoiOrZero(match[1])
	hours := atoiOrZero(match[2])
	minutes := atoiOrZero(match[3])
	seconds := atoiOrZero(match[4])
	return days*24*3600 + hours*3600 + minutes*60 + seconds
}

func parseTimestamp(value string) (time.Time, error) {
	normalized := strings.TrimSpace(value)
	t, err := time.Parse(time.RFC3339, normalized)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// sanitizeBoosts lowercases channel names and drops entries with empty
// names or non-positive multipliers.
func sanitizeBoosts(boosts map[string]float64) map[string]float64 {
	sanitized := make(map[string]float64, len(boosts))
	for name, multiplier := range boosts {
		trimmed := strings.ToLower(strings.TrimSpace(name))
		if trimmed == "" || multiplier <= 0 {
			continue
		}
		sanitized[trimmed] = multiplier
	}
	return sanitized
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

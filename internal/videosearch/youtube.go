package videosearch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/jonathan/cv-align/internal/types"
)

const (
	defaultCacheTTL   = 24 * time.Hour
	maxResultsPerCall = 25
)

// SearchCache persists search results across processes. Implemented by
// the db package; a stale or missing entry returns nil, nil.
type SearchCache interface {
	GetCachedSearch(ctx context.Context, query string, maxAge time.Duration) ([]types.Video, error)
	PutCachedSearch(ctx context.Context, query string, videos []types.Video) error
}

// MetadataStore records per-video metadata for later enrichment.
type MetadataStore interface {
	UpsertVideoMetadata(ctx context.Context, video types.Video) error
}

// videoAPI is the slice of the YouTube Data API the service spends
// quota on: one ID search plus one details lookup.
type videoAPI interface {
	searchIDs(ctx context.Context, query string, maxResults int64) ([]string, error)
	videosByID(ctx context.Context, ids []string) ([]types.Video, error)
}

// Service searches YouTube with an in-memory cache in front of the
// persistent cache in front of the API, spending quota only on misses.
type Service struct {
	api      videoAPI
	quota    QuotaTracker
	cache    SearchCache
	metadata MetadataStore
	ttl      time.Duration

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	videos  []types.Video
	fetched time.Time
}

// NewService builds a YouTube search service. cache and metadata may be
// nil, disabling the persistent layers.
func NewService(ctx context.Context, apiKey string, quota QuotaTracker, cache SearchCache, metadata MetadataStore) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube API key is required")
	}
	yt, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return newService(&youtubeAPI{yt: yt}, quota, cache, metadata), nil
}

func newService(api videoAPI, quota QuotaTracker, cache SearchCache, metadata MetadataStore) *Service {
	return &Service{
		api:      api,
		quota:    quota,
		cache:    cache,
		metadata: metadata,
		ttl:      defaultCacheTTL,
		memo:     map[string]memoEntry{},
	}
}

// Search returns up to maxResults videos for the query, preferring the
// caches. Quota exhaustion surfaces as an error; the caller decides how
// to degrade.
func (s *Service) Search(ctx context.Context, query string, maxResults int64) ([]types.Video, error) {
	if maxResults <= 0 || maxResults > maxResultsPerCall {
		maxResults = maxResultsPerCall
	}

	if videos, ok := s.fromMemo(query); ok {
		return limitVideos(videos, maxResults), nil
	}
	if s.cache != nil {
		videos, err := s.cache.GetCachedSearch(ctx, query, s.ttl)
		if err != nil {
			log.Printf("videosearch: cache read failed for %q: %v", query, err)
		} else if videos != nil {
			s.memoize(query, videos)
			return limitVideos(videos, maxResults), nil
		}
	}

	videos, err := s.fetch(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	s.memoize(query, videos)
	if s.cache != nil {
		if err := s.cache.PutCachedSearch(ctx, query, videos); err != nil {
			log.Printf("videosearch: cache write failed for %q: %v", query, err)
		}
	}
	if s.metadata != nil {
		for _, video := range videos {
			if err := s.metadata.UpsertVideoMetadata(ctx, video); err != nil {
				log.Printf("videosearch: metadata upsert failed for %s: %v", video.VideoID, err)
			}
		}
	}
	return videos, nil
}

// fetch spends quota against the live API: one search call plus one
// videos.list call for statistics and durations.
func (s *Service) fetch(ctx context.Context, query string, maxResults int64) ([]types.Video, error) {
	if err := s.quota.Reserve(CostSearch); err != nil {
		return nil, fmt.Errorf("search %q refused: %w", query, err)
	}
	ids, err := s.api.searchIDs(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("youtube search failed for %q: %w", query, err)
	}
	if len(ids) == 0 {
		return []types.Video{}, nil
	}

	if err := s.quota.Reserve(CostVideoList); err != nil {
		return nil, fmt.Errorf("video details for %q refused: %w", query, err)
	}
	videos, err := s.api.videosByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("youtube video details failed for %q: %w", query, err)
	}
	return videos, nil
}

// youtubeAPI is the live videoAPI over the Data API v3 client.
type youtubeAPI struct {
	yt *youtube.Service
}

// searchIDs runs an unfiltered video search. No duration class is
// requested; duration policy belongs to the ranking heuristics, and the
// API's classes would exclude the long-form tutorials they prefer.
func (a *youtubeAPI) searchIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := a.yt.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

func (a *youtubeAPI) videosByID(ctx context.Context, ids []string) ([]types.Video, error) {
	resp, err := a.yt.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Context(ctx).
		Id(ids...).
		Do()
	if err != nil {
		return nil, err
	}

	videos := make([]types.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, toVideo(item))
	}
	return videos, nil
}

func toVideo(item *youtube.Video) types.Video {
	video := types.Video{
		VideoID: item.Id,
		URL:     "https://www.youtube.com/watch?v=" + item.Id,
	}
	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.ChannelTitle = item.Snippet.ChannelTitle
		video.PublishedAt = item.Snippet.PublishedAt
	}
	if item.ContentDetails != nil {
		video.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		video.ViewCount = int64(item.Statistics.ViewCount)
		video.LikeCount = int64(item.Statistics.LikeCount)
		video.CommentCount = int64(item.Statistics.CommentCount)
	}
	return video
}

func (s *Service) fromMemo(query string) ([]types.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.memo[query]
	if !ok || time.Since(entry.fetched) > s.ttl {
		return nil, false
	}
	return entry.videos, true
}

func (s *Service) memoize(query string, videos []types.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[query] = memoEntry{videos: videos, fetched: time.Now()}
}

func limitVideos(videos []types.Video, limit int64) []types.Video {
	if int64(len(videos)) <= limit {
		return videos
	}
	return videos[:limit]
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-align/internal/types"
)

// GetCachedSearch returns the cached results for a search query if the
// entry is younger than maxAge. A stale or missing entry returns nil, nil.
func (db *DB) GetCachedSearch(ctx context.Context, query string, maxAge time.Duration) ([]types.Video, error) {
	var resultsJSON []byte
	var createdAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT results, created_at FROM video_search_cache WHERE query = $1`,
		query,
	).Scan(&resultsJSON, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached search: %w", err)
	}
	if maxAge > 0 && time.Since(createdAt) > maxAge {
		return nil, nil
	}

	var videos []types.Video
	if err := json.Unmarshal(resultsJSON, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode cached search: %w", err)
	}
	return videos, nil
}

// PutCachedSearch stores search results for a query, replacing any
// earlier entry.
func (db *DB) PutCachedSearch(ctx context.Context, query string, videos []types.Video) error {
	resultsJSON, err := json.Marshal(videos)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO video_search_cache (query, results)
		 VALUES ($1, $2)
		 ON CONFLICT (query) DO UPDATE SET results = $2, created_at = NOW()`,
		query, resultsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to cache search results: %w", err)
	}
	return nil
}

// UpsertVideoMetadata stores or refreshes the metadata for a video.
func (db *DB) UpsertVideoMetadata(ctx context.Context, video types.Video) error {
	metadataJSON, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to marshal video metadata: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO video_metadata (video_id, metadata)
		 VALUES ($1, $2)
		 ON CONFLICT (video_id) DO UPDATE SET metadata = $2, updated_at = NOW()`,
		video.VideoID, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert video metadata: %w", err)
	}
	return nil
}

// SetVideoAnalysis attaches an LLM content analysis to a cached video.
func (db *DB) SetVideoAnalysis(ctx context.Context, videoID string, analysis *types.TutorialAnalysis) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal video analysis: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE video_metadata SET analysis = $1, updated_at = NOW() WHERE video_id = $2`,
		analysisJSON, videoID,
	)
	if err != nil {
		return fmt.Errorf("failed to set video analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("video %s not found", videoID)
	}
	return nil
}

// ListVideosMissingAnalysis pages through cached videos that have no
// analysis yet. The cursor is the last video ID of the previous page;
// pass "" for the first page.
func (db *DB) ListVideosMissingAnalysis(ctx context.Context, cursor string, limit int) ([]VideoMetadataRow, string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT video_id, metadata, analysis, created_at, updated_at
		 FROM video_metadata
		 WHERE analysis IS NULL AND video_id > $1
		 ORDER BY video_id
		 LIMIT $2`,
		cursor, limit,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list videos missing analysis: %w", err)
	}
	defer rows.Close()

	var videos []VideoMetadataRow
	for rows.Next() {
		var row VideoMetadataRow
		if err := rows.Scan(&row.VideoID, &row.Metadata, &row.Analysis, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, row)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(videos) == limit {
		nextCursor = videos[len(videos)-1].VideoID
	}
	return videos, nextCursor, nil
}

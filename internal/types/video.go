package types

// Video holds the metadata returned by the video-search collaborator for
// a single tutorial candidate. Duration is the raw ISO-8601 string and
// PublishedAt the raw RFC 3339 timestamp; both are parsed lazily by the
// ranking heuristics so malformed provider data degrades instead of
// failing the pipeline.
type Video struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	ChannelTitle string `json:"channel_title"`
	Duration     string `json:"duration"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	PublishedAt  string `json:"published_at"`
}

package domain

import "time"

// MaxPageSize is the provider's page size ceiling for media listings.
// Both the first-page snapshot fetch and the history paginator request it.
const MaxPageSize = 20

// MediaItem is one provider video belonging to a linked account.
// MediaID is the natural key: repeated ingestion of the same id overwrites.
type MediaItem struct {
	MediaID       string    `json:"media_id"`
	Title         string    `json:"title,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	ShareURL      string    `json:"share_url,omitempty"`
	ViewCount     int64     `json:"view_count"`
	LikeCount     int64     `json:"like_count"`
	CommentCount  int64     `json:"comment_count"`
	ShareCount    int64     `json:"share_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// MediaPage is one page of a paginated media listing.
// Cursor is the provider's opaque position for the next request;
// it is only meaningful while the run that received it is alive.
type MediaPage struct {
	Items   []*MediaItem `json:"items"`
	Cursor  int64        `json:"cursor"`
	HasMore bool         `json:"has_more"`
}

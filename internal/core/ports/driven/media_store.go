package driven

import (
	"context"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// MediaStore handles media item persistence (PostgreSQL)
type MediaStore interface {
	// UpsertBatch inserts or updates a batch of media items atomically.
	// Items are keyed by (user_id, open_id, media_id); re-ingesting a page
	// refreshes engagement counters instead of duplicating rows.
	UpsertBatch(ctx context.Context, userID, openID string, items []*domain.MediaItem) error

	// Get retrieves a single media item by its platform ID.
	Get(ctx context.Context, userID, openID, mediaID string) (*domain.MediaItem, error)

	// GetByAccount retrieves media items for an account, newest first.
	GetByAccount(ctx context.Context, userID, openID string, limit, offset int) ([]*domain.MediaItem, error)

	// CountByAccount returns the number of stored media items for an account.
	CountByAccount(ctx context.Context, userID, openID string) (int64, error)

	// DeleteByAccount removes all media items for an account.
	DeleteByAccount(ctx context.Context, userID, openID string) error
}

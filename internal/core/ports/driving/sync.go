package driving

import (
	"context"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// HistorySyncService coordinates full video-history ingestion
type HistorySyncService interface {
	// EnqueueHistorySync queues a background history pull for an account.
	// Returns the created task so callers can poll its status.
	EnqueueHistorySync(ctx context.Context, userID, openID string) (*domain.Task, error)

	// RunHistorySync walks the full paginated video history for an account,
	// upserting each page, and records the terminal outcome on the account.
	// The returned summary carries the error text for failed runs; the error
	// return is reserved for precondition failures such as a held lock.
	RunHistorySync(ctx context.Context, userID, openID string) (*domain.RunSummary, error)

	// GetTask retrieves a queued or finished sync task by ID.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
}

package driven

import (
	"context"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// LinkedAccountStore handles linked account persistence (PostgreSQL).
// Access and refresh tokens are encrypted at rest by the implementation.
type LinkedAccountStore interface {
	// Get retrieves a linked account by owner and platform open ID.
	Get(ctx context.Context, userID, openID string) (*domain.LinkedAccount, error)

	// List retrieves all linked accounts for a user, newest first.
	List(ctx context.Context, userID string) ([]*domain.LinkedAccount, error)

	// Delete removes a linked account.
	Delete(ctx context.Context, userID, openID string) error

	// ApplySnapshot persists a fresh provider snapshot atomically:
	// the account row (tokens, profile, counters) and the first page of
	// media items are written in a single transaction.
	ApplySnapshot(ctx context.Context, account *domain.LinkedAccount, items []*domain.MediaItem) error

	// UpdateSyncStatus transitions the sync state of an account.
	// errMsg is stored only for domain.SyncStatusError and cleared otherwise.
	UpdateSyncStatus(ctx context.Context, userID, openID string, status domain.SyncStatus, errMsg string, at time.Time) error

	// FinishSync records the terminal outcome of a history run: status,
	// last sync time, error text and the refreshed video count.
	FinishSync(ctx context.Context, summary *domain.RunSummary) error

	// UpdateTokens replaces the stored token set after a refresh.
	UpdateTokens(ctx context.Context, userID, openID string, grant *domain.TokenGrant, at time.Time) error
}

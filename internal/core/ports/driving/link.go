package driving

import (
	"context"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// LinkRequest represents a request to connect a provider account
type LinkRequest struct {
	Code string `json:"code"`
}

// MediaListResult is one page of stored media plus the account total
type MediaListResult struct {
	Items []*domain.MediaItem `json:"items"`
	Total int64               `json:"total"`
}

// LinkService manages the lifecycle of connected provider accounts
type LinkService interface {
	// LinkAccount exchanges an OAuth code, fetches the profile and first
	// media page, and persists the new linked account for the user.
	LinkAccount(ctx context.Context, userID string, req LinkRequest) (*domain.LinkedAccountSummary, error)

	// ResyncAccount refreshes tokens if needed and re-fetches profile and
	// first media page for an already linked account.
	ResyncAccount(ctx context.Context, userID, openID string) (*domain.LinkedAccountSummary, error)

	// Disconnect removes a linked account and its stored media.
	Disconnect(ctx context.Context, userID, openID string) error

	// GetAccount retrieves a linked account (token-free view).
	GetAccount(ctx context.Context, userID, openID string) (*domain.LinkedAccountSummary, error)

	// ListAccounts retrieves all linked accounts for a user.
	ListAccounts(ctx context.Context, userID string) ([]*domain.LinkedAccountSummary, error)

	// ListMedia retrieves stored media for an account with pagination.
	ListMedia(ctx context.Context, userID, openID string, limit, offset int) (*MediaListResult, error)
}

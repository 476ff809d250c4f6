package driven

import (
	"context"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// Provider talks to the TikTok open API.
// All methods return *domain.ProviderError wrapping the matching sentinel
// when the platform reports a failure, so callers can branch with errors.Is.
type Provider interface {
	// ExchangeCode trades an OAuth authorization code for a token grant.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error)

	// RefreshGrant obtains a fresh token grant from a refresh token.
	// The returned grant carries a new refresh token; the old one is dead.
	RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)

	// FetchProfile retrieves the creator profile for an access token.
	FetchProfile(ctx context.Context, accessToken, openID string) (*domain.Profile, error)

	// ListMedia retrieves one page of the account's video history.
	// cursor 0 requests the newest page; maxCount is capped at
	// domain.MaxPageSize by the platform.
	ListMedia(ctx context.Context, accessToken, openID string, cursor int64, maxCount int) (*domain.MediaPage, error)
}

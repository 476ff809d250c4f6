package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrNotConfigured indicates provider client credentials are unset.
	// Not retryable; requires an operator fix.
	ErrNotConfigured = errors.New("provider credentials not configured")

	// ErrTokenExchange indicates the provider rejected the authorization code.
	// The user must re-run the OAuth consent flow.
	ErrTokenExchange = errors.New("token exchange rejected")

	// ErrTokenRefresh indicates the provider rejected the refresh token.
	// The user must reconnect the account.
	ErrTokenRefresh = errors.New("token refresh rejected")

	// ErrProfileFetch indicates the provider's profile endpoint failed
	ErrProfileFetch = errors.New("profile fetch failed")

	// ErrMediaFetch indicates the provider's media-list endpoint failed
	ErrMediaFetch = errors.New("media fetch failed")

	// ErrPageFetch indicates a page fetch failed mid-history-pull.
	// Fatal for the whole run: the cursor cannot be resumed blindly.
	ErrPageFetch = errors.New("page fetch failed")

	// ErrPageLimitExceeded indicates the paginator hit its defensive page cap
	ErrPageLimitExceeded = errors.New("page limit exceeded")

	// ErrSyncInProgress indicates a sync is already running for the account
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrAccountNotFound indicates no linked account exists for the key
	ErrAccountNotFound = errors.New("linked account not found")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ProviderError carries the error code and message embedded in a provider
// API response body. It wraps one of the sentinel errors above so callers
// can branch with errors.Is while logs keep the provider's own diagnostics.
type ProviderError struct {
	Kind    error  // sentinel: ErrTokenExchange, ErrProfileFetch, ...
	Code    string // provider error code, e.g. "invalid_grant"
	Message string // provider error description
}

// NewProviderError wraps a provider-reported failure in a sentinel kind.
func NewProviderError(kind error, code, message string) *ProviderError {
	return &ProviderError{Kind: kind, Code: code, Message: message}
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Code)
}

// Unwrap exposes the sentinel kind for errors.Is matching.
func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// ReconnectRequired reports whether the failure means the stored tokens are
// unusable and the user has to go through the OAuth consent screen again,
// as opposed to a temporary provider-side issue worth retrying.
func ReconnectRequired(err error) bool {
	return errors.Is(err, ErrTokenExchange) || errors.Is(err, ErrTokenRefresh)
}

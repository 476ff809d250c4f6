package domain

import "time"

// SyncStatus represents the current state of an account's media sync
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// TokenGrant is the token material returned by the provider's token endpoint.
// Expiry fields are lifetimes in seconds relative to when the grant was issued.
type TokenGrant struct {
	OpenID           string `json:"open_id"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	Scope            string `json:"scope,omitempty"`
}

// AccessExpiry returns the absolute access-token expiry for a grant issued at from.
func (g *TokenGrant) AccessExpiry(from time.Time) time.Time {
	return from.Add(time.Duration(g.ExpiresIn) * time.Second)
}

// RefreshExpiry returns the absolute refresh-token expiry for a grant issued at from.
func (g *TokenGrant) RefreshExpiry(from time.Time) time.Time {
	return from.Add(time.Duration(g.RefreshExpiresIn) * time.Second)
}

// Profile is the provider-side user profile as of the most recent fetch.
type Profile struct {
	OpenID         string `json:"open_id"`
	UnionID        string `json:"union_id,omitempty"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Verified       bool   `json:"verified"`
	ProfileLink    string `json:"profile_link,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	LikesCount     int    `json:"likes_count"`
	VideoCount     int    `json:"video_count"`
}

// LinkedAccount ties a local user to one connected provider account.
// Token fields are stored encrypted at rest and never serialized outward.
type LinkedAccount struct {
	UserID         string `json:"user_id"`
	OpenID         string `json:"open_id"`
	UnionID        string `json:"union_id,omitempty"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Verified       bool   `json:"verified"`
	ProfileLink    string `json:"profile_link,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	LikesCount     int    `json:"likes_count"`
	VideoCount     int    `json:"video_count"`

	AccessToken      string    `json:"-"`
	RefreshToken     string    `json:"-"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`

	SyncStatus SyncStatus `json:"sync_status"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	SyncError  string     `json:"sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTokens reports whether the account holds a complete token pair.
// Tokens are always both present or both absent once an exchange succeeded.
func (a *LinkedAccount) HasTokens() bool {
	return a.AccessToken != "" && a.RefreshToken != ""
}

// AccessTokenExpired reports whether the access token needs a refresh.
func (a *LinkedAccount) AccessTokenExpired(now time.Time) bool {
	return !a.AccessExpiresAt.After(now)
}

// RefreshTokenExpired reports whether the refresh token itself is dead,
// in which case the user must re-run the OAuth consent flow.
func (a *LinkedAccount) RefreshTokenExpired(now time.Time) bool {
	return !a.RefreshExpiresAt.After(now)
}

// LinkedAccountSummary is the outward view of a linked account (no tokens).
type LinkedAccountSummary struct {
	UserID         string     `json:"user_id"`
	OpenID         string     `json:"open_id"`
	DisplayName    string     `json:"display_name"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Verified       bool       `json:"verified"`
	ProfileLink    string     `json:"profile_link,omitempty"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	LikesCount     int        `json:"likes_count"`
	VideoCount     int        `json:"video_count"`
	SyncStatus     SyncStatus `json:"sync_status"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	SyncError      string     `json:"sync_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToSummary converts a LinkedAccount to its token-free outward view.
func (a *LinkedAccount) ToSummary() *LinkedAccountSummary {
	return &LinkedAccountSummary{
		UserID:         a.UserID,
		OpenID:         a.OpenID,
		DisplayName:    a.DisplayName,
		AvatarURL:      a.AvatarURL,
		Bio:            a.Bio,
		Verified:       a.Verified,
		ProfileLink:    a.ProfileLink,
		FollowerCount:  a.FollowerCount,
		FollowingCount: a.FollowingCount,
		LikesCount:     a.LikesCount,
		VideoCount:     a.VideoCount,
		SyncStatus:     a.SyncStatus,
		LastSyncAt:     a.LastSyncAt,
		SyncError:      a.SyncError,
		CreatedAt:      a.CreatedAt,
	}
}

// AccountSnapshot is the aggregate result of one exchange or refresh cycle:
// token material, profile fields, and the (possibly empty) first page of media.
type AccountSnapshot struct {
	Grant     *TokenGrant  `json:"grant"`
	Profile   *Profile     `json:"profile"`
	Media     []*MediaItem `json:"media"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Account materializes the snapshot as a LinkedAccount owned by userID.
// Token expiries are computed relative to the snapshot's fetch time.
func (s *AccountSnapshot) Account(userID string) *LinkedAccount {
	return &LinkedAccount{
		UserID:           userID,
		OpenID:           s.Profile.OpenID,
		UnionID:          s.Profile.UnionID,
		DisplayName:      s.Profile.DisplayName,
		AvatarURL:        s.Profile.AvatarURL,
		Bio:              s.Profile.Bio,
		Verified:         s.Profile.Verified,
		ProfileLink:      s.Profile.ProfileLink,
		FollowerCount:    s.Profile.FollowerCount,
		FollowingCount:   s.Profile.FollowingCount,
		LikesCount:       s.Profile.LikesCount,
		VideoCount:       s.Profile.VideoCount,
		AccessToken:      s.Grant.AccessToken,
		RefreshToken:     s.Grant.RefreshToken,
		AccessExpiresAt:  s.Grant.AccessExpiry(s.FetchedAt),
		RefreshExpiresAt: s.Grant.RefreshExpiry(s.FetchedAt),
		SyncStatus:       SyncStatusPending,
		UpdatedAt:        s.FetchedAt,
	}
}

// RunSummary is the terminal record of one full-history pull.
// A run either ingested Items media across Pages pages, or failed with Err.
type RunSummary struct {
	UserID     string    `json:"user_id"`
	OpenID     string    `json:"open_id"`
	Pages      int       `json:"pages"`
	Items      int       `json:"items"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Err        string    `json:"error,omitempty"`
}

// Success reports whether the run completed without a fatal error.
func (r *RunSummary) Success() bool {
	return r.Err == ""
}

package domain

import (
	"testing"
	"time"
)

func TestTokenGrant_Expiries(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	grant := &TokenGrant{
		ExpiresIn:        86400,
		RefreshExpiresIn: 31536000,
	}

	if got := grant.AccessExpiry(issued); !got.Equal(issued.Add(24 * time.Hour)) {
		t.Errorf("access expiry = %v, want issued+24h", got)
	}
	if got := grant.RefreshExpiry(issued); !got.Equal(issued.Add(365 * 24 * time.Hour)) {
		t.Errorf("refresh expiry = %v, want issued+365d", got)
	}
}

func TestLinkedAccount_HasTokens(t *testing.T) {
	acct := &LinkedAccount{}
	if acct.HasTokens() {
		t.Error("expected no tokens on empty account")
	}

	acct.AccessToken = "act"
	if acct.HasTokens() {
		t.Error("access token without refresh token must not count as complete")
	}

	acct.RefreshToken = "rt"
	if !acct.HasTokens() {
		t.Error("expected complete token pair")
	}
}

func TestLinkedAccount_TokenExpiry(t *testing.T) {
	now := time.Now()
	acct := &LinkedAccount{
		AccessExpiresAt:  now.Add(-time.Minute),
		RefreshExpiresAt: now.Add(time.Hour),
	}

	if !acct.AccessTokenExpired(now) {
		t.Error("expected expired access token")
	}
	if acct.RefreshTokenExpired(now) {
		t.Error("refresh token should still be valid")
	}
}

func TestLinkedAccount_ToSummary_OmitsTokens(t *testing.T) {
	acct := &LinkedAccount{
		UserID:       "u1",
		OpenID:       "open-1",
		DisplayName:  "Creator",
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
		SyncStatus:   SyncStatusSuccess,
	}

	sum := acct.ToSummary()
	if sum.OpenID != "open-1" || sum.DisplayName != "Creator" {
		t.Errorf("summary fields not copied: %+v", sum)
	}
	if sum.SyncStatus != SyncStatusSuccess {
		t.Errorf("sync status = %s, want success", sum.SyncStatus)
	}
}

func TestAccountSnapshot_Account(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &AccountSnapshot{
		Grant: &TokenGrant{
			OpenID:           "open-1",
			AccessToken:      "act",
			RefreshToken:     "rt",
			ExpiresIn:        3600,
			RefreshExpiresIn: 7200,
		},
		Profile: &Profile{
			OpenID:        "open-1",
			DisplayName:   "Creator",
			FollowerCount: 1200,
			VideoCount:    34,
		},
		FetchedAt: fetched,
	}

	acct := snap.Account("u1")
	if acct.UserID != "u1" || acct.OpenID != "open-1" {
		t.Fatalf("unexpected keys: %+v", acct)
	}
	if acct.SyncStatus != SyncStatusPending {
		t.Errorf("new account status = %s, want pending", acct.SyncStatus)
	}
	if !acct.AccessExpiresAt.Equal(fetched.Add(time.Hour)) {
		t.Errorf("access expiry = %v", acct.AccessExpiresAt)
	}
	if !acct.RefreshExpiresAt.Equal(fetched.Add(2 * time.Hour)) {
		t.Errorf("refresh expiry = %v", acct.RefreshExpiresAt)
	}
	if acct.FollowerCount != 1200 || acct.VideoCount != 34 {
		t.Errorf("profile counts not copied: %+v", acct)
	}
}

func TestRunSummary_Success(t *testing.T) {
	ok := &RunSummary{Items: 60}
	if !ok.Success() {
		t.Error("expected success for run without error")
	}

	failed := &RunSummary{Err: "page fetch failed"}
	if failed.Success() {
		t.Error("expected failure for run with error")
	}
}

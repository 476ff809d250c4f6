package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

func testConfig(baseURL string) Config {
	return Config{
		ClientKey:    "test-key",
		ClientSecret: "test-secret",
		RedirectURI:  "https://app.example.com/callback",
		BaseURL:      baseURL,
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/oauth/token/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("client_key") != "test-key" {
			t.Errorf("expected client_key, got %q", r.PostForm.Get("client_key"))
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("expected authorization_code grant, got %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "authcode" {
			t.Errorf("expected code, got %q", r.PostForm.Get("code"))
		}
		if r.PostForm.Get("redirect_uri") == "" {
			t.Error("expected redirect_uri to be sent")
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"open_id":            "open-1",
			"access_token":       "act.abc",
			"refresh_token":      "rft.def",
			"expires_in":         86400,
			"refresh_expires_in": 31536000,
			"scope":              "user.info.basic,video.list",
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	grant, err := client.ExchangeCode(context.Background(), "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.OpenID != "open-1" || grant.AccessToken != "act.abc" || grant.RefreshToken != "rft.def" {
		t.Errorf("unexpected grant %+v", grant)
	}
	if grant.ExpiresIn != 86400 || grant.RefreshExpiresIn != 31536000 {
		t.Errorf("unexpected lifetimes %+v", grant)
	}
}

func TestClient_ExchangeCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "Authorization code is expired.",
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeCode(context.Background(), "stale")
	if !errors.Is(err, domain.ErrTokenExchange) {
		t.Fatalf("expected ErrTokenExchange, got %v", err)
	}

	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if perr.Code != "invalid_grant" {
		t.Errorf("expected provider code preserved, got %q", perr.Code)
	}
}

func TestClient_ExchangeCode_NotConfigured(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.ExchangeCode(context.Background(), "code")
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_RefreshGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("expected refresh_token grant, got %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "rft.old" {
			t.Errorf("expected refresh token sent, got %q", r.PostForm.Get("refresh_token"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"open_id":            "open-1",
			"access_token":       "act.new",
			"refresh_token":      "rft.new",
			"expires_in":         86400,
			"refresh_expires_in": 31536000,
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	grant, err := client.RefreshGrant(context.Background(), "rft.old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.AccessToken != "act.new" || grant.RefreshToken != "rft.new" {
		t.Errorf("expected rotated tokens, got %+v", grant)
	}
}

func TestClient_RefreshGrant_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "Refresh token is invalid or expired.",
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.RefreshGrant(context.Background(), "rft.dead")
	if !errors.Is(err, domain.ErrTokenRefresh) {
		t.Errorf("expected ErrTokenRefresh, got %v", err)
	}
	if !domain.ReconnectRequired(err) {
		t.Error("a rejected refresh must require reconnect")
	}
}

func TestClient_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/user/info/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer act.abc" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("fields") == "" {
			t.Error("expected fields query parameter")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"open_id":           "open-1",
					"display_name":      "creator one",
					"bio_description":   "makes videos",
					"is_verified":       true,
					"profile_deep_link": "https://www.tiktok.com/@creatorone",
					"follower_count":    1200,
					"following_count":   34,
					"likes_count":       56000,
					"video_count":       78,
				},
			},
			"error": map[string]any{"code": "ok", "message": ""},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	profile, err := client.FetchProfile(context.Background(), "act.abc", "open-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.DisplayName != "creator one" || !profile.Verified {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.FollowerCount != 1200 || profile.VideoCount != 78 {
		t.Errorf("unexpected counts %+v", profile)
	}
}

func TestClient_FetchProfile_EnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  map[string]any{},
			"error": map[string]any{"code": "access_token_invalid", "message": "The access token is invalid."},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.FetchProfile(context.Background(), "act.bad", "open-1")
	if !errors.Is(err, domain.ErrProfileFetch) {
		t.Errorf("expected ErrProfileFetch, got %v", err)
	}
}

func TestClient_ListMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/video/list/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Cursor   int64 `json:"cursor"`
			MaxCount int   `json:"max_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Cursor != 1700000000 {
			t.Errorf("expected cursor forwarded, got %d", body.Cursor)
		}
		if body.MaxCount != domain.MaxPageSize {
			t.Errorf("expected max_count %d, got %d", domain.MaxPageSize, body.MaxCount)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"videos": []map[string]any{
					{
						"id":            "v1",
						"title":         "first",
						"view_count":    1000,
						"like_count":    50,
						"comment_count": 5,
						"share_count":   2,
						"create_time":   1700000100,
					},
					{"id": "v2", "title": "second", "create_time": 1700000200},
				},
				"cursor":   1699990000,
				"has_more": true,
			},
			"error": map[string]any{"code": "ok"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	page, err := client.ListMedia(context.Background(), "act.abc", "open-1", 1700000000, domain.MaxPageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].MediaID != "v1" || page.Items[0].ViewCount != 1000 {
		t.Errorf("unexpected first item %+v", page.Items[0])
	}
	if !page.Items[0].CreatedAt.Equal(time.Unix(1700000100, 0).UTC()) {
		t.Errorf("unexpected create time %v", page.Items[0].CreatedAt)
	}
	if page.Cursor != 1699990000 || !page.HasMore {
		t.Errorf("unexpected paging fields %+v", page)
	}
}

func TestClient_ListMedia_EnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  map[string]any{},
			"error": map[string]any{"code": "rate_limit_exceeded", "message": "Too many requests."},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ListMedia(context.Background(), "act.abc", "open-1", 0, domain.MaxPageSize)
	if !errors.Is(err, domain.ErrMediaFetch) {
		t.Errorf("expected ErrMediaFetch, got %v", err)
	}
}

func TestClient_ListMedia_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ListMedia(context.Background(), "act.abc", "open-1", 0, domain.MaxPageSize)
	if !errors.Is(err, domain.ErrMediaFetch) {
		t.Errorf("expected ErrMediaFetch, got %v", err)
	}
}

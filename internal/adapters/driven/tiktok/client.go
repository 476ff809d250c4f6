package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
	"github.com/clipfolio/sync-core/internal/core/ports/driven"
)

// Ensure Client implements the Provider port.
var _ driven.Provider = (*Client)(nil)

const defaultBaseURL = "https://open.tiktokapis.com"

// Field lists requested from the open API. They match what the domain
// models carry; anything not listed is never returned by TikTok.
const (
	userFields = "open_id,union_id,avatar_url,display_name,bio_description," +
		"is_verified,profile_deep_link,follower_count,following_count,likes_count,video_count"
	videoFields = "id,title,cover_image_url,share_url,view_count,like_count," +
		"comment_count,share_count,create_time"
)

// Client talks to the TikTok open API v2.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a TikTok API client from app credentials.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// tokenResponse is the flat body of the oauth token endpoint.
type tokenResponse struct {
	OpenID           string `json:"open_id"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// apiError is the envelope error every non-token endpoint carries.
// Code "ok" means success.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e apiError) failed() bool {
	return e.Code != "" && e.Code != "ok"
}

// ExchangeCode trades an OAuth authorization code for a token grant.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{
		"client_key":    {c.cfg.ClientKey},
		"client_secret": {c.cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.cfg.RedirectURI},
	}

	return c.postToken(ctx, params, domain.ErrTokenExchange)
}

// RefreshGrant obtains a fresh token grant from a refresh token.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{
		"client_key":    {c.cfg.ClientKey},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	return c.postToken(ctx, params, domain.ErrTokenRefresh)
}

// postToken posts a form to the token endpoint and maps the response.
// TikTok reports token failures as an error field in a 200 body, so the
// error field is checked before the status code.
func (c *Client) postToken(ctx context.Context, params url.Values, kind error) (*domain.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/v2/oauth/token/",
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response (status %d): %w", resp.StatusCode, err)
	}

	if tr.Error != "" {
		return nil, domain.NewProviderError(kind, tr.Error, tr.ErrorDescription)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderError(kind, fmt.Sprintf("http_%d", resp.StatusCode), string(body))
	}
	if tr.AccessToken == "" {
		return nil, domain.NewProviderError(kind, "empty_grant", "token endpoint returned no access token")
	}

	return &domain.TokenGrant{
		OpenID:           tr.OpenID,
		AccessToken:      tr.AccessToken,
		RefreshToken:     tr.RefreshToken,
		ExpiresIn:        tr.ExpiresIn,
		RefreshExpiresIn: tr.RefreshExpiresIn,
		Scope:            tr.Scope,
	}, nil
}

// FetchProfile retrieves the creator profile for an access token.
func (c *Client) FetchProfile(ctx context.Context, accessToken, openID string) (*domain.Profile, error) {
	endpoint := c.baseURL + "/v2/user/info/?fields=" + url.QueryEscape(userFields)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var payload struct {
		Data struct {
			User struct {
				OpenID          string `json:"open_id"`
				UnionID         string `json:"union_id"`
				AvatarURL       string `json:"avatar_url"`
				DisplayName     string `json:"display_name"`
				BioDescription  string `json:"bio_description"`
				IsVerified      bool   `json:"is_verified"`
				ProfileDeepLink string `json:"profile_deep_link"`
				FollowerCount   int    `json:"follower_count"`
				FollowingCount  int    `json:"following_count"`
				LikesCount      int    `json:"likes_count"`
				VideoCount      int    `json:"video_count"`
			} `json:"user"`
		} `json:"data"`
		Error apiError `json:"error"`
	}

	if err := c.doJSON(req, &payload, &payload.Error, domain.ErrProfileFetch); err != nil {
		return nil, err
	}

	u := payload.Data.User
	return &domain.Profile{
		OpenID:         u.OpenID,
		UnionID:        u.UnionID,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		Bio:            u.BioDescription,
		Verified:       u.IsVerified,
		ProfileLink:    u.ProfileDeepLink,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		LikesCount:     u.LikesCount,
		VideoCount:     u.VideoCount,
	}, nil
}

// ListMedia retrieves one page of the account's video history.
func (c *Client) ListMedia(ctx context.Context, accessToken, openID string, cursor int64, maxCount int) (*domain.MediaPage, error) {
	if maxCount <= 0 || maxCount > domain.MaxPageSize {
		maxCount = domain.MaxPageSize
	}

	reqBody, err := json.Marshal(map[string]any{
		"cursor":    cursor,
		"max_count": maxCount,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/v2/video/list/?fields=" + url.QueryEscape(videoFields)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var payload struct {
		Data struct {
			Videos []struct {
				ID            string `json:"id"`
				Title         string `json:"title"`
				CoverImageURL string `json:"cover_image_url"`
				ShareURL      string `json:"share_url"`
				ViewCount     int64  `json:"view_count"`
				LikeCount     int64  `json:"like_count"`
				CommentCount  int64  `json:"comment_count"`
				ShareCount    int64  `json:"share_count"`
				CreateTime    int64  `json:"create_time"`
			} `json:"videos"`
			Cursor  int64 `json:"cursor"`
			HasMore bool  `json:"has_more"`
		} `json:"data"`
		Error apiError `json:"error"`
	}

	if err := c.doJSON(req, &payload, &payload.Error, domain.ErrMediaFetch); err != nil {
		return nil, err
	}

	page := &domain.MediaPage{
		Cursor:  payload.Data.Cursor,
		HasMore: payload.Data.HasMore,
	}
	for _, v := range payload.Data.Videos {
		page.Items = append(page.Items, &domain.MediaItem{
			MediaID:       v.ID,
			Title:         v.Title,
			CoverImageURL: v.CoverImageURL,
			ShareURL:      v.ShareURL,
			ViewCount:     v.ViewCount,
			LikeCount:     v.LikeCount,
			CommentCount:  v.CommentCount,
			ShareCount:    v.ShareCount,
			CreatedAt:     time.Unix(v.CreateTime, 0).UTC(),
		})
	}
	return page, nil
}

// Server-side failures on read endpoints are retried a couple of times.
// Token calls are never retried: a refresh token is single use and a
// duplicate exchange would burn it.
const (
	maxRetries   = 2
	retryBackoff = 500 * time.Millisecond
)

// doJSON executes the request, decodes into out, and maps the envelope
// error (code != "ok") or a non-200 status to a ProviderError of kind.
// Transport errors and 5xx responses are retried with a linear backoff.
func (c *Client) doJSON(req *http.Request, out any, envErr *apiError, kind error) error {
	var (
		status  int
		body    []byte
		lastErr error
	)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return req.Context().Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		status, body, lastErr = c.do(req, attempt > 0)
		if lastErr == nil && status < http.StatusInternalServerError {
			break
		}
	}
	if lastErr != nil {
		return fmt.Errorf("do request: %w", lastErr)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if status != http.StatusOK {
			return domain.NewProviderError(kind, fmt.Sprintf("http_%d", status), string(body))
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if envErr.failed() {
		return domain.NewProviderError(kind, envErr.Code, envErr.Message)
	}
	if status != http.StatusOK {
		return domain.NewProviderError(kind, fmt.Sprintf("http_%d", status), string(body))
	}
	return nil
}

// do sends the request once and drains the body. Retries need a fresh
// body, so the request is cloned after the first attempt.
func (c *Client) do(req *http.Request, clone bool) (int, []byte, error) {
	r := req
	if clone {
		r = req.Clone(req.Context())
		if req.GetBody != nil {
			rb, err := req.GetBody()
			if err != nil {
				return 0, nil, fmt.Errorf("rewind request body: %w", err)
			}
			r.Body = rb
		}
	}

	resp, err := c.httpClient.Do(r)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

package tiktok

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

func TestClient_FetchProfile_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"open_id":      "open-1",
					"display_name": "Creator One",
					"video_count":  12,
				},
			},
			"error": map[string]any{"code": "ok"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	profile, err := client.FetchProfile(context.Background(), "act.abc", "open-1")
	require.NoError(t, err)

	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, "open-1", profile.OpenID)
	assert.Equal(t, 12, profile.VideoCount)
}

func TestClient_ListMedia_RetryResendsBody(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Cursor   int64 `json:"cursor"`
			MaxCount int   `json:"max_count"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(4200), body.Cursor)

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"videos":   []map[string]any{{"id": "v1", "create_time": 1700000100}},
				"cursor":   int64(4300),
				"has_more": false,
			},
			"error": map[string]any{"code": "ok"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	page, err := client.ListMedia(context.Background(), "act.abc", "open-1", 4200, domain.MaxPageSize)
	require.NoError(t, err)

	assert.Equal(t, int32(2), attempts.Load())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "v1", page.Items[0].MediaID)
}

func TestClient_FetchProfile_GivesUpAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.FetchProfile(context.Background(), "act.abc", "open-1")
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrProfileFetch)
	assert.Equal(t, int32(1+maxRetries), attempts.Load())
}

func TestClient_ExchangeCode_NeverRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeCode(context.Background(), "authcode")
	require.Error(t, err)

	// A duplicate exchange would consume the single-use code.
	assert.Equal(t, int32(1), attempts.Load())
}

package tiktok

import (
	"fmt"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// Config holds the TikTok OAuth app credentials.
type Config struct {
	// ClientKey and ClientSecret identify the registered TikTok app.
	ClientKey    string
	ClientSecret string

	// RedirectURI must match the URI registered with the app. It is sent
	// on every code exchange.
	RedirectURI string

	// BaseURL overrides the API host (tests only).
	BaseURL string
}

// Validate reports whether the config carries usable credentials.
func (c Config) Validate() error {
	if c.ClientKey == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: tiktok client key and secret are required", domain.ErrNotConfigured)
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("%w: tiktok redirect uri is required", domain.ErrNotConfigured)
	}
	return nil
}

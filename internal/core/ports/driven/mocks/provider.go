package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// MockProvider is a mock implementation of Provider for testing.
// Script media pages with SetPages; hooks override individual methods.
type MockProvider struct {
	mu sync.Mutex

	ExchangeCodeFn func(code string) (*domain.TokenGrant, error)
	RefreshGrantFn func(refreshToken string) (*domain.TokenGrant, error)
	FetchProfileFn func(accessToken, openID string) (*domain.Profile, error)
	ListMediaFn    func(accessToken, openID string, cursor int64, maxCount int) (*domain.MediaPage, error)

	pages     map[int64]*domain.MediaPage
	pageErrs  map[int64]error
	ListCalls []int64
}

// NewMockProvider creates a new MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		pages:    make(map[int64]*domain.MediaPage),
		pageErrs: make(map[int64]error),
	}
}

// SetPage scripts the page returned for a given cursor.
func (m *MockProvider) SetPage(cursor int64, page *domain.MediaPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[cursor] = page
}

// SetPageError scripts a failure for a given cursor.
func (m *MockProvider) SetPageError(cursor int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageErrs[cursor] = err
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	if m.ExchangeCodeFn != nil {
		return m.ExchangeCodeFn(code)
	}
	return &domain.TokenGrant{
		OpenID:           "open-" + code,
		AccessToken:      "access-" + code,
		RefreshToken:     "refresh-" + code,
		ExpiresIn:        86400,
		RefreshExpiresIn: 31536000,
	}, nil
}

func (m *MockProvider) RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if m.RefreshGrantFn != nil {
		return m.RefreshGrantFn(refreshToken)
	}
	return &domain.TokenGrant{
		AccessToken:      "rotated-access",
		RefreshToken:     "rotated-refresh",
		ExpiresIn:        86400,
		RefreshExpiresIn: 31536000,
	}, nil
}

func (m *MockProvider) FetchProfile(ctx context.Context, accessToken, openID string) (*domain.Profile, error) {
	if m.FetchProfileFn != nil {
		return m.FetchProfileFn(accessToken, openID)
	}
	return &domain.Profile{
		OpenID:      openID,
		DisplayName: "mock creator",
		VideoCount:  42,
	}, nil
}

func (m *MockProvider) ListMedia(ctx context.Context, accessToken, openID string, cursor int64, maxCount int) (*domain.MediaPage, error) {
	if m.ListMediaFn != nil {
		return m.ListMediaFn(accessToken, openID, cursor, maxCount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls = append(m.ListCalls, cursor)
	if err, ok := m.pageErrs[cursor]; ok {
		return nil, err
	}
	page, ok := m.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("no page scripted for cursor %d", cursor)
	}
	return page, nil
}

// Helper methods for testing

func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = make(map[int64]*domain.MediaPage)
	m.pageErrs = make(map[int64]error)
	m.ListCalls = nil
}

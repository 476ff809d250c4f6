package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// MockLinkedAccountStore is a mock implementation of LinkedAccountStore for testing.
// Accounts are keyed by "userID/openID" in memory; optional Fn hooks override
// individual methods for failure injection.
type MockLinkedAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LinkedAccount

	ApplySnapshotFn    func(account *domain.LinkedAccount, items []*domain.MediaItem) error
	UpdateSyncStatusFn func(userID, openID string, status domain.SyncStatus, errMsg string) error
	FinishSyncFn       func(summary *domain.RunSummary) error

	// SnapshotItems records the media batches passed to ApplySnapshot.
	SnapshotItems [][]*domain.MediaItem
	// FinishCalls records the summaries passed to FinishSync.
	FinishCalls []*domain.RunSummary
}

// NewMockLinkedAccountStore creates a new MockLinkedAccountStore
func NewMockLinkedAccountStore() *MockLinkedAccountStore {
	return &MockLinkedAccountStore{
		accounts: make(map[string]*domain.LinkedAccount),
	}
}

func accountKey(userID, openID string) string {
	return userID + "/" + openID
}

func (m *MockLinkedAccountStore) Get(ctx context.Context, userID, openID string) (*domain.LinkedAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[accountKey(userID, openID)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *MockLinkedAccountStore) List(ctx context.Context, userID string) ([]*domain.LinkedAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LinkedAccount
	for _, account := range m.accounts {
		if account.UserID == userID {
			copied := *account
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockLinkedAccountStore) Delete(ctx context.Context, userID, openID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := accountKey(userID, openID)
	if _, ok := m.accounts[key]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, key)
	return nil
}

func (m *MockLinkedAccountStore) ApplySnapshot(ctx context.Context, account *domain.LinkedAccount, items []*domain.MediaItem) error {
	if m.ApplySnapshotFn != nil {
		return m.ApplySnapshotFn(account, items)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *account
	m.accounts[accountKey(account.UserID, account.OpenID)] = &copied
	m.SnapshotItems = append(m.SnapshotItems, items)
	return nil
}

func (m *MockLinkedAccountStore) UpdateSyncStatus(ctx context.Context, userID, openID string, status domain.SyncStatus, errMsg string, at time.Time) error {
	if m.UpdateSyncStatusFn != nil {
		return m.UpdateSyncStatusFn(userID, openID, status, errMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountKey(userID, openID)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.SyncStatus = status
	account.UpdatedAt = at
	if status == domain.SyncStatusError {
		account.SyncError = errMsg
	} else {
		account.SyncError = ""
	}
	return nil
}

func (m *MockLinkedAccountStore) FinishSync(ctx context.Context, summary *domain.RunSummary) error {
	if m.FinishSyncFn != nil {
		return m.FinishSyncFn(summary)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishCalls = append(m.FinishCalls, summary)
	account, ok := m.accounts[accountKey(summary.UserID, summary.OpenID)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.UpdatedAt = summary.FinishedAt
	if summary.Success() {
		account.SyncStatus = domain.SyncStatusSuccess
		account.SyncError = ""
		finished := summary.FinishedAt
		account.LastSyncAt = &finished
		account.VideoCount = summary.Items
	} else {
		account.SyncStatus = domain.SyncStatusError
		account.SyncError = summary.Err
	}
	return nil
}

func (m *MockLinkedAccountStore) UpdateTokens(ctx context.Context, userID, openID string, grant *domain.TokenGrant, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountKey(userID, openID)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.AccessToken = grant.AccessToken
	account.RefreshToken = grant.RefreshToken
	account.AccessExpiresAt = grant.AccessExpiry(at)
	account.RefreshExpiresAt = grant.RefreshExpiry(at)
	account.UpdatedAt = at
	return nil
}

// Helper methods for testing

// Seed inserts an account directly (for test setup).
func (m *MockLinkedAccountStore) Seed(account *domain.LinkedAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[accountKey(account.UserID, account.OpenID)] = account
}

func (m *MockLinkedAccountStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = make(map[string]*domain.LinkedAccount)
	m.SnapshotItems = nil
	m.FinishCalls = nil
}

func (m *MockLinkedAccountStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/clipfolio/sync-core/internal/core/domain"
)

// MockMediaStore is a mock implementation of MediaStore for testing.
// Items are keyed by (userID, openID, mediaID); upserts replace existing rows.
type MockMediaStore struct {
	mu    sync.RWMutex
	items map[string]map[string]*domain.MediaItem

	UpsertBatchFn func(userID, openID string, items []*domain.MediaItem) error

	// UpsertCalls counts UpsertBatch invocations (one per ingested page).
	UpsertCalls int
}

// NewMockMediaStore creates a new MockMediaStore
func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{
		items: make(map[string]map[string]*domain.MediaItem),
	}
}

func (m *MockMediaStore) UpsertBatch(ctx context.Context, userID, openID string, items []*domain.MediaItem) error {
	if m.UpsertBatchFn != nil {
		return m.UpsertBatchFn(userID, openID, items)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	key := accountKey(userID, openID)
	if m.items[key] == nil {
		m.items[key] = make(map[string]*domain.MediaItem)
	}
	for _, item := range items {
		copied := *item
		m.items[key][item.MediaID] = &copied
	}
	return nil
}

func (m *MockMediaStore) Get(ctx context.Context, userID, openID, mediaID string) (*domain.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[accountKey(userID, openID)][mediaID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *MockMediaStore) GetByAccount(ctx context.Context, userID, openID string, limit, offset int) ([]*domain.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.MediaItem
	for _, item := range m.items[accountKey(userID, openID)] {
		copied := *item
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMediaStore) CountByAccount(ctx context.Context, userID, openID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.items[accountKey(userID, openID)])), nil
}

func (m *MockMediaStore) DeleteByAccount(ctx context.Context, userID, openID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, accountKey(userID, openID))
	return nil
}

// Helper methods for testing

func (m *MockMediaStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]map[string]*domain.MediaItem)
	m.UpsertCalls = 0
}

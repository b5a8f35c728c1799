package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// MockSyncRunStore is a mock implementation of SyncRunStore for testing
type MockSyncRunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.SyncRun

	SaveErr error
	saves   []domain.SyncRun
}

// NewMockSyncRunStore creates a new MockSyncRunStore
func NewMockSyncRunStore() *MockSyncRunStore {
	return &MockSyncRunStore{
		runs: make(map[string]*domain.SyncRun),
	}
}

func (m *MockSyncRunStore) Save(ctx context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *run
	m.runs[run.ID] = &cp
	m.saves = append(m.saves, cp)
	return nil
}

func (m *MockSyncRunStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *MockSyncRunStore) List(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.SyncRun
	for _, run := range m.runs {
		cp := *run
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Helper methods for testing

// Saves returns every saved snapshot in order.
func (m *MockSyncRunStore) Saves() []domain.SyncRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.SyncRun(nil), m.saves...)
}

package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/mythos-client/pkg/state"
)

// MockStorage is an in-memory Storage for tests and offline replay
// sessions.
type MockStorage struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*state.GameState

	// Optional error injection for tests
	SaveError   error
	LoadError   error
	DeleteError error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[uuid.UUID]*state.GameState),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = gs
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[id], nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

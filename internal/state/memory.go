package state

import (
	"context"
	"sync"
)

// #region memory-store
// MemoryStore keeps the encoded snapshot in memory. Used by replay and tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (EngineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return Default(), nil
	}
	return Unmarshal(m.data)
}

func (m *MemoryStore) Save(_ context.Context, s EngineState) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error {
	return nil
}

// #endregion memory-store

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"credverify/internal/blob"
	"credverify/internal/sentinel"
)

// MemoryStore keeps pinned documents in process, addressed by SHA-256.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, v any) (string, error) {
	data, err := blob.Canonical(v)
	if err != nil {
		return "", err
	}
	address := blob.ContentAddress(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[address] = data
	return address, nil
}

func (m *MemoryStore) Get(_ context.Context, address string, out any) error {
	m.mu.RLock()
	data, ok := m.blobs[address]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("blob %s: %w", address, sentinel.ErrNotFound)
	}
	return json.Unmarshal(data, out)
}

// Len returns the number of pinned documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

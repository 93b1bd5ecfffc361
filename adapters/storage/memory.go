package storage

import (
	"context"
	"sync"

	"github.com/satriahrh/voxtag/domain/repositories"
)

// MemoryStorage is an in-memory BlobStorage, used for tests and the
// "memory" storage backend
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// Ensure MemoryStorage implements the BlobStorage interface
var _ repositories.BlobStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string][]byte),
	}
}

// Put implements BlobStorage
func (m *MemoryStorage) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy to prevent external modifications
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

// Get implements BlobStorage
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.blobs[key]
	if !exists {
		return nil, repositories.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete implements BlobStorage
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}

// Len returns the number of stored blobs
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

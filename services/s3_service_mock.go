package services

import (
	"context"
	"fmt"
	"sync"
)

// MockArchiveStore is an in-memory ArchiveStore for testing
type MockArchiveStore struct {
	objects map[string][]byte
	failing map[string]bool
	mu      sync.RWMutex
}

// NewMockArchiveStore creates an empty mock archive store
func NewMockArchiveStore() *MockArchiveStore {
	return &MockArchiveStore{
		objects: make(map[string][]byte),
		failing: make(map[string]bool),
	}
}

// PutArchive stores a copy of body under key
func (m *MockArchiveStore) PutArchive(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing[key] {
		return fmt.Errorf("mock S3 rejected %s", key)
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

// FailOn makes PutArchive fail for key
func (m *MockArchiveStore) FailOn(key string) {
	m.mu.Lock()
	m.failing[key] = true
	m.mu.Unlock()
}

// Objects returns a copy of all stored archives (for testing assertions)
func (m *MockArchiveStore) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// Exists checks if an archive exists in mock storage
func (m *MockArchiveStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

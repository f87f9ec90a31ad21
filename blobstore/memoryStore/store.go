package memoryStore

import (
	"fmt"
	"sync"

	"asset-catalog/blobstore"
)

// MemoryStore implements the blob store interface using in-memory storage.
// Used only for testing and single-process setups.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new memory-based blob store
func New() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a payload under the given asset id
func (s *MemoryStore) Put(id string, content []byte) error {
	stored := make([]byte, len(content))
	copy(stored, content)

	s.mu.Lock()
	s.blobs[id] = stored
	s.mu.Unlock()

	return nil
}

// Get retrieves a payload by asset id
func (s *MemoryStore) Get(id string) ([]byte, error) {
	s.mu.RLock()
	content, exists := s.blobs[id]
	s.mu.RUnlock()

	if !exists {
		return nil, blobstore.ErrBlobNotFound
	}

	// Return a copy to prevent external modifications
	result := make([]byte, len(content))
	copy(result, content)

	return result, nil
}

// Delete removes a payload by asset id
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[id]; !exists {
		return fmt.Errorf("failed to remove blob: %w", blobstore.ErrBlobNotFound)
	}

	delete(s.blobs, id)

	return nil
}

// Clear removes all payloads from memory (useful for testing)
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.blobs = make(map[string][]byte)
	s.mu.Unlock()
}

// Count returns the number of payloads stored (useful for testing)
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs)
}

package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
)

// InMemoryStore keeps assets in memory for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPuts forces Put to fail, for exercising storage-failure paths.
	FailPuts bool
	// FailDeletes forces Delete to fail.
	FailDeletes bool
}

// NewInMemory constructs an empty in-memory asset store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

func (s *InMemoryStore) Put(_ context.Context, storageID string, data []byte, _ string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPuts {
		return Object{}, sentinel.ErrUnavailable
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageID] = buf
	url := fmt.Sprintf("mem://assets/%s", storageID)
	return Object{URL: url, ThumbnailURL: url + "?size=thumb", StorageID: storageID}, nil
}

func (s *InMemoryStore) Delete(_ context.Context, storageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes {
		return sentinel.ErrUnavailable
	}
	if _, ok := s.objects[storageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.objects, storageID)
	return nil
}

// Has reports whether an object is stored. Test helper.
func (s *InMemoryStore) Has(storageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageID]
	return ok
}

// Len returns the number of stored objects. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

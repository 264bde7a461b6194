package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// InMemoryStore keeps verification records in memory. It backs tests and
// single-process deployments; the postgres store is the production path.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

// New constructs an empty in-memory verification store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.UserID]; ok {
		return sentinel.ErrConflict
	}
	s.records[record.UserID] = record.Clone()
	return nil
}

// Replace atomically swaps the user's record for a new one. The validate
// closure runs against the stored record under the store lock, so a record
// that transitioned after the caller's read fails here instead of being
// overwritten.
func (s *InMemoryStore) Replace(_ context.Context, record *models.Record, validate func(current *models.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[record.UserID]; ok && validate != nil {
		if err := validate(current.Clone()); err != nil {
			return err
		}
	}
	s.records[record.UserID] = record.Clone()
	return nil
}

func (s *InMemoryStore) FindByUser(_ context.Context, userID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemoryStore) ListPending(_ context.Context, limit, offset int) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*models.Record
	for _, record := range s.records {
		if record.Status == models.StatusPending {
			pending = append(pending, record.Clone())
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})

	if offset >= len(pending) {
		return nil, nil
	}
	pending = pending[offset:]
	if limit > 0 && limit < len(pending) {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *InMemoryStore) CountPending(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.records {
		if record.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

// Execute validates and mutates a record under the store lock so concurrent
// transitions serialize; the loser of a double review observes the new state.
func (s *InMemoryStore) Execute(_ context.Context, userID string, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	updated := record.Clone()
	mutate(updated)
	s.records[userID] = updated
	return updated.Clone(), nil
}

func (s *InMemoryStore) ListExpired(_ context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stale []string
	for _, record := range s.records {
		if record.Status == models.StatusVerified && record.ExpiryDate != nil && !record.ExpiryDate.After(now) {
			stale = append(stale, record.UserID)
		}
	}
	sort.Strings(stale)
	if limit > 0 && limit < len(stale) {
		stale = stale[:limit]
	}
	return stale, nil
}

// MarkExpired performs the conditional VERIFIED to EXPIRED transition.
// Returns false when the record is absent, not VERIFIED, or not yet stale.
func (s *InMemoryStore) MarkExpired(_ context.Context, userID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return false, nil
	}
	if record.Status != models.StatusVerified || record.ExpiryDate == nil || record.ExpiryDate.After(now) {
		return false, nil
	}
	record.Status = models.StatusExpired
	return true, nil
}

func (s *InMemoryStore) TouchAccess(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.AccessCount++
	t := at
	record.LastAccessedAt = &t
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, userID)
	return nil
}

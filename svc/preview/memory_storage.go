package preview

import (
	"context"
	"sync"
	"time"
)

type memoryStorage struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStorage returns a process-local Storage.
// It has no passive expiry, so records disappear only through the sweep.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		records: make(map[string]*Record),
	}
}

func (s *memoryStorage) Insert(_ context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return ErrDuplicateID
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *memoryStorage) FindByID(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *memoryStorage) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.records {
		if !rec.CreatedAt.After(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

func (s *memoryStorage) CountCreatedAfter(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.records {
		if rec.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process match cache, useful for tests and single-node
// deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory match cache.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the owner's entry, or ErrMiss if absent or expired. Expired
// entries are reaped on read.
func (s *MemoryStore) Get(ctx context.Context, ownerID string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[ownerID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if entry.Expired(s.now()) {
		s.mu.Lock()
		delete(s.entries, ownerID)
		s.mu.Unlock()
		return nil, ErrMiss
	}
	return entry, nil
}

// Upsert inserts or wholly replaces the owner's entry.
func (s *MemoryStore) Upsert(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.OwnerID] = entry
	return nil
}

// Delete removes the owner's entry if present.
func (s *MemoryStore) Delete(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ownerID)
	return nil
}

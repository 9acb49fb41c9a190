package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store, useful for tests and demos.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	order    []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
	}
}

// Put inserts or replaces a profile.
func (s *MemoryStore) Put(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.profiles[p.ID] = p
}

// GetByID returns a single profile or ErrNotFound.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetManyByID returns profiles for the given ids, omitting missing ones.
func (s *MemoryStore) GetManyByID(ctx context.Context, ids []string) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListAll returns every profile in insertion order.
func (s *MemoryStore) ListAll(ctx context.Context) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Profile, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.profiles[id])
	}
	return result, nil
}

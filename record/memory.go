package record

import (
	"context"
	"fmt"
	"sync"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

// MemoryStore is a Store backed by a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[jsonapi.Identifier]any
}

// NewMemoryStore returns a store holding the given records.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{values: make(map[jsonapi.Identifier]any, len(records))}
	s.Add(records...)
	return s
}

// Add stores records under their own identifiers.
func (s *MemoryStore) Add(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.values[r.Identifier()] = r
	}
}

// Set stores an arbitrary value under id.
func (s *MemoryStore) Set(id jsonapi.Identifier, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

func (s *MemoryStore) Find(_ context.Context, id jsonapi.Identifier) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

func (s *MemoryStore) FindMany(_ context.Context, ids []jsonapi.Identifier) (map[jsonapi.Identifier]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[jsonapi.Identifier]any, len(ids))
	for _, id := range ids {
		if v, ok := s.values[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)

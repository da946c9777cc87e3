package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]domain.ViewState
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]domain.ViewState)}
}

// Save persists the state in memory.
func (s *Store) Save(ctx context.Context, key string, state domain.ViewState) error {
	// Copy the override map so later transforms on the caller's value can
	// never leak into the store.
	copied := state
	copied.Expanded = make(map[string]bool, len(state.Expanded))
	for k, v := range state.Expanded {
		copied.Expanded[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load retrieves the state from memory.
func (s *Store) Load(ctx context.Context, key string) (domain.ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[key]
	if !ok {
		return domain.ViewState{}, domain.ErrStateNotFound
	}

	ret := state
	ret.Expanded = make(map[string]bool, len(state.Expanded))
	for k, v := range state.Expanded {
		ret.Expanded[k] = v
	}
	return ret, nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in deterministic order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

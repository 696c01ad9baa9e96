package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dogmatiq/escf/persistence"
)

// StateStore is an in-memory implementation of persistence.StateStore.
type StateStore struct {
	m      sync.RWMutex
	states map[persistence.StateKey][]byte
}

var _ persistence.StateStore = (*StateStore)(nil)

// LoadState returns the state of the instance identified by k.
func (s *StateStore) LoadState(
	_ context.Context,
	k persistence.StateKey,
) ([]byte, bool, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	data, ok := s.states[k]
	return slices.Clone(data), ok, nil
}

// SaveState replaces the state of the instance identified by k.
func (s *StateStore) SaveState(
	_ context.Context,
	k persistence.StateKey,
	data []byte,
) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.states == nil {
		s.states = map[persistence.StateKey][]byte{}
	}

	s.states[k] = slices.Clone(data)

	return nil
}

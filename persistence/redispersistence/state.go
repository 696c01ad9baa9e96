// Package redispersistence provides a Redis implementation of
// persistence.StateStore.
package redispersistence

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/escf/persistence"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is the default prefix applied to the keys used to store
// aggregate state.
const DefaultKeyPrefix = "escf:state:"

// StateStore is an implementation of persistence.StateStore that stores
// aggregate state as Redis string values.
type StateStore struct {
	// Client is the Redis client used to store state.
	Client redis.UniversalClient

	// KeyPrefix is the prefix applied to each key. If it is empty,
	// DefaultKeyPrefix is used.
	KeyPrefix string

	// TTL is the expiry applied to each key when state is saved. If it is
	// zero, keys do not expire.
	TTL time.Duration
}

var _ persistence.StateStore = (*StateStore)(nil)

// LoadState returns the state of the instance identified by k.
func (s *StateStore) LoadState(
	ctx context.Context,
	k persistence.StateKey,
) ([]byte, bool, error) {
	data, err := s.Client.Get(ctx, s.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return data, true, nil
}

// SaveState replaces the state of the instance identified by k.
func (s *StateStore) SaveState(
	ctx context.Context,
	k persistence.StateKey,
	data []byte,
) error {
	return s.Client.Set(ctx, s.key(k), data, s.TTL).Err()
}

// key returns the Redis key used for the instance identified by k.
func (s *StateStore) key(k persistence.StateKey) string {
	p := s.KeyPrefix
	if p == "" {
		p = DefaultKeyPrefix
	}

	return p + k.AggregateType + ":" + k.AggregateID
}

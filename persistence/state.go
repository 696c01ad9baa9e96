package persistence

import (
	"context"
)

// StateKey identifies the durable state of a single aggregate instance.
type StateKey struct {
	AggregateType string
	AggregateID   string
}

func (k StateKey) String() string {
	return k.AggregateType + "/" + k.AggregateID
}

// StateStore is a durable key-value store that holds the current state of each
// aggregate instance.
//
// A single writer exists per key at any time, so implementations are not
// required to detect concurrent modification.
type StateStore interface {
	// LoadState returns the state of the instance identified by k.
	//
	// ok is false if no state has been saved for k.
	LoadState(ctx context.Context, k StateKey) (data []byte, ok bool, err error)

	// SaveState replaces the state of the instance identified by k.
	SaveState(ctx context.Context, k StateKey, data []byte) error
}

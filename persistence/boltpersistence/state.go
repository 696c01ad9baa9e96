package boltpersistence

import (
	"context"
	"slices"

	"github.com/dogmatiq/escf/internal/x/bboltx"
	"github.com/dogmatiq/escf/persistence"
	"go.etcd.io/bbolt"
)

// stateBucketKey is the key for the root bucket for aggregate state.
//
// The keys are aggregate type names. The values are buckets where the keys
// are instance IDs and the values are the state data.
var stateBucketKey = []byte("state")

// LoadState returns the state of the instance identified by k.
func (s *Store) LoadState(
	_ context.Context,
	k persistence.StateKey,
) (data []byte, ok bool, err error) {
	err = s.view(func(tx *bbolt.Tx) {
		v := bboltx.Get(
			tx,
			[]byte(k.AggregateID),
			stateBucketKey,
			[]byte(k.AggregateType),
		)

		if v != nil {
			data = slices.Clone(v)
			ok = true
		}
	})

	return data, ok, err
}

// SaveState replaces the state of the instance identified by k.
func (s *Store) SaveState(
	_ context.Context,
	k persistence.StateKey,
	data []byte,
) error {
	if data == nil {
		// bbolt treats a nil value as "no value" in some API calls, so always
		// store a non-nil slice.
		data = []byte{}
	}

	return s.update(func(tx *bbolt.Tx) {
		b := bboltx.CreateBucketIfNotExists(
			tx,
			stateBucketKey,
			[]byte(k.AggregateType),
		)

		bboltx.Put(b, []byte(k.AggregateID), data)
	})
}

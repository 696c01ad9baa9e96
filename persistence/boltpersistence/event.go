package boltpersistence

import (
	"context"
	"encoding/binary"

	"github.com/dogmatiq/escf/internal/x/bboltx"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
	"go.etcd.io/bbolt"
)

var (
	// eventBucketKey is the key for the root bucket for events.
	eventBucketKey = []byte("event")

	// eventDataBucketKey is the key for a child bucket that contains each
	// event's data.
	//
	// The keys are the event offsets encoded as 8-byte big-endian packets. The
	// values are the events marshaled using persistence.MarshalEvent().
	eventDataBucketKey = []byte("data")

	// eventOffsetsBucketKey is the key for a child bucket that allows retrieval
	// of event offsets by their event ID.
	//
	// The keys are the event IDs. The values are event offsets encoded as
	// 8-byte big-endian packets.
	eventOffsetsBucketKey = []byte("offsets")

	// eventInstancesBucketKey is the key for a child bucket that indexes
	// events by the aggregate instance that produced them.
	//
	// The keys are aggregate instance IDs. The values are buckets where the
	// keys are event offsets and the values are empty.
	eventInstancesBucketKey = []byte("instances")

	// eventNextOffsetKey is the key of a value within the root bucket that
	// contains the next unused offset encoded as 8-byte big-endian packet.
	eventNextOffsetKey = []byte("offset")
)

// AddEvent appends an event to the store.
func (s *Store) AddEvent(_ context.Context, ev message.Event) error {
	data, err := persistence.MarshalEvent(ev)
	if err != nil {
		return err
	}

	var dup bool

	err = s.update(func(tx *bbolt.Tx) {
		root := bboltx.CreateBucketIfNotExists(tx, eventBucketKey)
		offsets := bboltx.CreateBucketIfNotExists(root, eventOffsetsBucketKey)

		if offsets.Get([]byte(ev.ID)) != nil {
			dup = true
			return
		}

		// The offset is re-encoded so that it does not refer to memory owned
		// by the database, which is invalidated by the writes below.
		next := marshalUint64(unmarshalUint64(root.Get(eventNextOffsetKey)))

		bboltx.Put(
			bboltx.CreateBucketIfNotExists(root, eventDataBucketKey),
			next,
			data,
		)

		bboltx.Put(offsets, []byte(ev.ID), next)

		bboltx.Put(
			bboltx.CreateBucketIfNotExists(
				root,
				eventInstancesBucketKey,
				[]byte(ev.AggregateID),
			),
			next,
			[]byte{},
		)

		bboltx.Put(
			root,
			eventNextOffsetKey,
			marshalUint64(unmarshalUint64(next)+1),
		)
	})

	if err == nil && dup {
		return persistence.DuplicateEventError{EventID: ev.ID}
	}

	return err
}

// GetEvents returns the events that match q.
func (s *Store) GetEvents(
	_ context.Context,
	q persistence.EventQuery,
) ([]message.Event, error) {
	var (
		result  []message.Event
		unknown bool
	)

	err := s.view(func(tx *bbolt.Tx) {
		root := tx.Bucket(eventBucketKey)
		if root == nil {
			unknown = q.FromEventID != ""
			return
		}

		begin := marshalUint64(0)

		if q.FromEventID != "" {
			begin = bboltx.Get(root, []byte(q.FromEventID), eventOffsetsBucketKey)
			if begin == nil {
				unknown = true
				return
			}
		}

		data := root.Bucket(eventDataBucketKey)

		// The cursor iterates over either every event, or the index of a
		// single instance's events. In both cases the keys are offsets.
		var cursor *bbolt.Cursor
		if q.AggregateID == "" {
			cursor = data.Cursor()
		} else if b := bboltx.Bucket(root, eventInstancesBucketKey, []byte(q.AggregateID)); b != nil {
			cursor = b.Cursor()
		} else {
			return
		}

		for k, _ := cursor.Seek(begin); k != nil; k, _ = cursor.Next() {
			if q.Limit > 0 && len(result) == q.Limit {
				break
			}

			ev, err := persistence.UnmarshalEvent(data.Get(k))
			bboltx.Must(err)

			result = append(result, ev)
		}
	})

	if err != nil {
		return nil, err
	}

	if unknown {
		return nil, persistence.UnknownEventError{EventID: q.FromEventID}
	}

	return result, nil
}

// GetAggregateEvents returns all of the events produced by a single aggregate
// instance.
func (s *Store) GetAggregateEvents(
	ctx context.Context,
	id string,
) ([]message.Event, error) {
	return s.GetEvents(ctx, persistence.EventQuery{AggregateID: id})
}

// marshalUint64 encodes an event offset as an 8-byte big-endian packet, which
// sorts in offset order.
func marshalUint64(v uint64) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, v)
	return data
}

// unmarshalUint64 decodes an event offset produced by marshalUint64().
func unmarshalUint64(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}

	return binary.BigEndian.Uint64(data)
}

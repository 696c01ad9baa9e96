package persistence

import (
	"context"
	"encoding/json"

	"github.com/dogmatiq/escf/message"
)

// EventQuery selects a range of events from an event store.
type EventQuery struct {
	// FromEventID is the ID of the first event to include. If it is empty,
	// the results begin at the first event in the store.
	FromEventID string

	// Limit is the maximum number of events to return. If it is non-positive
	// there is no limit.
	Limit int

	// AggregateID limits the results to events produced by a single aggregate
	// instance. If it is empty, events from all instances are included.
	AggregateID string
}

// EventStore is an append-only log of events.
//
// Events are returned in the order they were added.
type EventStore interface {
	// AddEvent appends an event to the store.
	//
	// It returns a DuplicateEventError if an event with the same ID has
	// already been added.
	AddEvent(ctx context.Context, ev message.Event) error

	// GetEvents returns the events that match q.
	//
	// It returns an UnknownEventError if q.FromEventID is non-empty and does
	// not refer to an event in the store.
	GetEvents(ctx context.Context, q EventQuery) ([]message.Event, error)

	// GetAggregateEvents returns all of the events produced by a single
	// aggregate instance.
	GetAggregateEvents(ctx context.Context, id string) ([]message.Event, error)
}

// MarshalEvent returns the binary representation of ev used by durable event
// stores.
func MarshalEvent(ev message.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// UnmarshalEvent decodes an event produced by MarshalEvent().
func UnmarshalEvent(data []byte) (message.Event, error) {
	var ev message.Event
	err := json.Unmarshal(data, &ev)
	return ev, err
}

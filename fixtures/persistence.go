package fixtures

import (
	"context"

	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
)

// StateStoreStub is a test implementation of the persistence.StateStore
// interface.
type StateStoreStub struct {
	persistence.StateStore

	LoadStateFunc func(context.Context, persistence.StateKey) ([]byte, bool, error)
	SaveStateFunc func(context.Context, persistence.StateKey, []byte) error
}

// LoadState returns the state of the instance identified by k.
func (s *StateStoreStub) LoadState(ctx context.Context, k persistence.StateKey) ([]byte, bool, error) {
	if s.LoadStateFunc != nil {
		return s.LoadStateFunc(ctx, k)
	}

	if s.StateStore != nil {
		return s.StateStore.LoadState(ctx, k)
	}

	return nil, false, nil
}

// SaveState replaces the state of the instance identified by k.
func (s *StateStoreStub) SaveState(ctx context.Context, k persistence.StateKey, data []byte) error {
	if s.SaveStateFunc != nil {
		return s.SaveStateFunc(ctx, k, data)
	}

	if s.StateStore != nil {
		return s.StateStore.SaveState(ctx, k, data)
	}

	return nil
}

// EventStoreStub is a test implementation of the persistence.EventStore
// interface.
type EventStoreStub struct {
	persistence.EventStore

	AddEventFunc           func(context.Context, message.Event) error
	GetEventsFunc          func(context.Context, persistence.EventQuery) ([]message.Event, error)
	GetAggregateEventsFunc func(context.Context, string) ([]message.Event, error)
}

// AddEvent appends an event to the store.
func (s *EventStoreStub) AddEvent(ctx context.Context, ev message.Event) error {
	if s.AddEventFunc != nil {
		return s.AddEventFunc(ctx, ev)
	}

	if s.EventStore != nil {
		return s.EventStore.AddEvent(ctx, ev)
	}

	return nil
}

// GetEvents returns the events that match q.
func (s *EventStoreStub) GetEvents(ctx context.Context, q persistence.EventQuery) ([]message.Event, error) {
	if s.GetEventsFunc != nil {
		return s.GetEventsFunc(ctx, q)
	}

	if s.EventStore != nil {
		return s.EventStore.GetEvents(ctx, q)
	}

	return nil, nil
}

// GetAggregateEvents returns all of the events produced by a single aggregate
// instance.
func (s *EventStoreStub) GetAggregateEvents(ctx context.Context, id string) ([]message.Event, error) {
	if s.GetAggregateEventsFunc != nil {
		return s.GetAggregateEventsFunc(ctx, id)
	}

	if s.EventStore != nil {
		return s.EventStore.GetAggregateEvents(ctx, id)
	}

	return nil, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
)

// EventStore is an in-memory implementation of persistence.EventStore.
type EventStore struct {
	m       sync.RWMutex
	events  []message.Event
	offsets map[string]int
}

var _ persistence.EventStore = (*EventStore)(nil)

// AddEvent appends an event to the store.
func (s *EventStore) AddEvent(_ context.Context, ev message.Event) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.offsets[ev.ID]; ok {
		return persistence.DuplicateEventError{EventID: ev.ID}
	}

	if s.offsets == nil {
		s.offsets = map[string]int{}
	}

	s.offsets[ev.ID] = len(s.events)
	s.events = append(s.events, ev)

	return nil
}

// GetEvents returns the events that match q.
func (s *EventStore) GetEvents(
	_ context.Context,
	q persistence.EventQuery,
) ([]message.Event, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	begin := 0

	if q.FromEventID != "" {
		o, ok := s.offsets[q.FromEventID]
		if !ok {
			return nil, persistence.UnknownEventError{EventID: q.FromEventID}
		}
		begin = o
	}

	var result []message.Event

	for _, ev := range s.events[begin:] {
		if q.Limit > 0 && len(result) == q.Limit {
			break
		}

		if q.AggregateID == "" || ev.AggregateID == q.AggregateID {
			result = append(result, ev)
		}
	}

	return result, nil
}

// GetAggregateEvents returns all of the events produced by a single aggregate
// instance.
func (s *EventStore) GetAggregateEvents(
	ctx context.Context,
	id string,
) ([]message.Event, error) {
	return s.GetEvents(ctx, persistence.EventQuery{AggregateID: id})
}

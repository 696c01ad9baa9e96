package escf

import (
	"context"
	"errors"

	"github.com/dogmatiq/escf/persistence"
)

// ErrNoEventStore is returned by System.Replay() if the system has no event
// store.
var ErrNoEventStore = errors.New("the system does not have an event store")

// Replay delivers the events in the event store that match q to the model with
// the given name, in the order they were appended. It returns the number of
// events delivered.
//
// Replay is used to rebuild a model's read model from scratch. The model is
// responsible for handling any events that it has already seen. Concurrent
// replays to the same model are serialized.
func (s *System[E]) Replay(
	ctx context.Context,
	env E,
	name string,
	q persistence.EventQuery,
) (n int, err error) {
	if s.config.EventStore == nil {
		return 0, ErrNoEventStore
	}

	m, err := s.model(env, name)
	if err != nil {
		return 0, err
	}

	unlock, err := s.replays.Lock(ctx, name)
	if err != nil {
		return 0, err
	}
	defer unlock()

	es, err := s.config.EventStore(env)
	if err != nil {
		return 0, err
	}

	var (
		cursor    = q.FromEventID
		remaining = q.Limit
		skipFirst = false // the cursor event was delivered in the previous page
	)

	for {
		size := DefaultReplayBatchSize
		if remaining > 0 && remaining < size {
			size = remaining
		}

		limit := size
		if skipFirst {
			limit++
		}

		events, err := es.GetEvents(ctx, persistence.EventQuery{
			FromEventID: cursor,
			Limit:       limit,
			AggregateID: q.AggregateID,
		})
		if err != nil {
			return n, err
		}

		if skipFirst && len(events) > 0 {
			events = events[1:]
		}

		if len(events) == 0 {
			return n, nil
		}

		err = m.Queue(ctx, events)
		s.metrics.ObserveDelivery(name, err)
		s.logDelivery(m, events, err)

		if err != nil {
			return n + delivered(err), &DeliveryError{Model: name, Cause: err}
		}

		n += len(events)

		if remaining > 0 {
			remaining -= len(events)
			if remaining == 0 {
				return n, nil
			}
		}

		if len(events) < size {
			return n, nil
		}

		cursor = events[len(events)-1].ID
		skipFirst = true
	}
}

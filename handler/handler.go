// Package handler contains the runtime shared by projections and processes,
// the models that consume the events produced by aggregates.
package handler

import (
	"context"
	"sort"

	"github.com/dogmatiq/escf/message"
)

// EventHandler is a function that handles a single event.
type EventHandler func(ctx context.Context, ev message.Event) error

// EventHandlers is a set of event handlers keyed by event type.
type EventHandlers map[string]EventHandler

// EventTypes returns the event types that have handlers, in sorted order.
func (h EventHandlers) EventTypes() []string {
	types := make([]string, 0, len(h))
	for t := range h {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// On returns an EventHandler that decodes the event payload as P before
// calling fn.
func On[P any](
	fn func(ctx context.Context, ev message.Event, payload P) error,
) EventHandler {
	return func(ctx context.Context, ev message.Event) error {
		p, err := message.DecodePayload[P](ev)
		if err != nil {
			return err
		}

		return fn(ctx, ev, p)
	}
}

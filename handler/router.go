package handler

import (
	"context"
	"fmt"

	"github.com/dogmatiq/escf/message"
)

// Router is a Model that dispatches events to handlers based on their type.
type Router struct {
	// ModelName is the name of the model.
	ModelName string

	// ModelKind is the kind of the model.
	ModelKind Kind

	// Handlers is the set of handlers, keyed by event type.
	Handlers EventHandlers
}

var _ Model = (*Router)(nil)

// Name returns the model's name.
func (r *Router) Name() string {
	return r.ModelName
}

// Kind returns the kind of the model.
func (r *Router) Kind() Kind {
	return r.ModelKind
}

// EventTypes returns the types of the events the model handles.
func (r *Router) EventTypes() []string {
	return r.Handlers.EventTypes()
}

// OnEvent invokes the handler for ev's type, if there is one.
func (r *Router) OnEvent(ctx context.Context, ev message.Event) error {
	if h, ok := r.Handlers[ev.Type]; ok {
		return h(ctx, ev)
	}

	return nil
}

// Queue invokes the handler for each event in batch, in order.
func (r *Router) Queue(ctx context.Context, batch message.Batch) error {
	for i, ev := range batch {
		err := ctx.Err()
		if err == nil {
			err = r.OnEvent(ctx, ev)
		}

		if err != nil {
			return &BatchError{
				Index: i,
				Event: ev,
				Cause: err,
			}
		}
	}

	return nil
}

// BatchError indicates that an event within a batch could not be delivered.
type BatchError struct {
	// Index is the index of the failed event within the batch. Every event
	// before it was delivered successfully.
	Index int

	// Event is the event that failed.
	Event message.Event

	// Cause is the error returned when handling the event.
	Cause error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf(
		"unable to handle event %d of the batch (%s %s): %s",
		e.Index,
		e.Event.Type,
		e.Event.ID,
		e.Cause,
	)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}

package handler

import (
	"context"

	"github.com/dogmatiq/escf/message"
)

// Model is a consumer of events, either a projection or a process.
type Model interface {
	// Name returns the model's name, unique within its kind.
	Name() string

	// Kind returns the kind of the model.
	Kind() Kind

	// EventTypes returns the types of the events the model handles.
	EventTypes() []string

	// OnEvent handles a single event.
	//
	// Events of types the model has no handler for are ignored.
	OnEvent(ctx context.Context, ev message.Event) error

	// Queue handles a batch of events in order.
	//
	// It stops at the first event that fails, returning a *BatchError that
	// identifies it. Events before that index were delivered successfully.
	Queue(ctx context.Context, batch message.Batch) error
}

// Constructor is a function that constructs a model for a specific
// environment.
//
// A model is constructed each time it is used, so that any bindings to
// external resources are obtained from the environment of the caller.
type Constructor[E any] func(env E) (Model, error)

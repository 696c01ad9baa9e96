package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/schema"
)

// StateDefinition describes the shape of an aggregate's state.
type StateDefinition[S any] struct {
	schema schema.Schema[S]
}

// DefineState returns a definition of aggregate state of type S.
//
// Every state produced by a reducer is validated against s before it is
// persisted.
func DefineState[S any](s schema.Schema[S]) *StateDefinition[S] {
	if s == nil {
		panic("state schema must not be nil")
	}

	return &StateDefinition[S]{s}
}

// Reducer is a function that computes the next state of an aggregate from its
// current state and the payload of an event.
//
// If the aggregate does not yet exist, state is the zero value of S. t is the
// time at which the event occurred.
type Reducer[S, P any] func(state S, payload P, t time.Time) S

// EventDefinition describes an event type that an aggregate of state S
// produces.
type EventDefinition[S any] interface {
	// EventType returns the event type name.
	EventType() string

	// reduce validates the event's payload and applies it to state.
	reduce(state S, ev message.Event) (payload any, next S, err error)
}

// Event returns the definition of an event type.
func Event[S, P any](
	eventType string,
	payload schema.Schema[P],
	reduce Reducer[S, P],
) EventDefinition[S] {
	if eventType == "" {
		panic("event type must not be empty")
	}

	if payload == nil || reduce == nil {
		panic(fmt.Sprintf("%s event must have a payload schema and a reducer", eventType))
	}

	return &eventDefinition[S, P]{eventType, payload, reduce}
}

type eventDefinition[S, P any] struct {
	eventType string
	payload   schema.Schema[P]
	reducer   Reducer[S, P]
}

func (d *eventDefinition[S, P]) EventType() string {
	return d.eventType
}

func (d *eventDefinition[S, P]) reduce(state S, ev message.Event) (any, S, error) {
	p, err := d.payload.Validate(ev.Payload)
	if err != nil {
		return nil, state, err
	}

	return p, d.reducer(state, p, ev.Time()), nil
}

// EventDefinitions is the set of event types that an aggregate of state S
// produces.
type EventDefinitions[S any] struct {
	state  *StateDefinition[S]
	byType map[string]EventDefinition[S]
}

// DefineEvents returns the set of event types produced by aggregates with the
// given state.
//
// It panics if more than one definition has the same event type.
func DefineEvents[S any](
	state *StateDefinition[S],
	defs ...EventDefinition[S],
) *EventDefinitions[S] {
	if state == nil {
		panic("state definition must not be nil")
	}

	events := &EventDefinitions[S]{
		state:  state,
		byType: make(map[string]EventDefinition[S], len(defs)),
	}

	for _, d := range defs {
		t := d.EventType()
		if _, ok := events.byType[t]; ok {
			panic(fmt.Sprintf("the %s event type is defined more than once", t))
		}

		events.byType[t] = d
	}

	return events
}

// Types returns the event type names, in sorted order.
func (d *EventDefinitions[S]) Types() []string {
	return sortedKeys(d.byType)
}

// Handler is a function that handles a command.
//
// state is nil if the aggregate does not yet exist. Handlers must not modify
// the state; they describe changes by returning events. Business rule
// violations are reported by returning a *rpc.RequestError.
type Handler[S, P any] func(
	ctx context.Context,
	payload P,
	state *S,
) ([]message.EventInput, error)

// CommandDefinition describes a command type that an aggregate of state S
// accepts.
type CommandDefinition[S any] interface {
	// CommandType returns the command type name.
	CommandType() string

	// prepare validates the command payload and returns a function that
	// invokes the handler with the validated payload.
	prepare(payload any) (invocation[S], error)
}

// invocation is a command handler bound to a validated payload.
type invocation[S any] func(ctx context.Context, state *S) ([]message.EventInput, error)

// Command returns the definition of a command type.
func Command[S, P any](
	commandType string,
	payload schema.Schema[P],
	handle Handler[S, P],
) CommandDefinition[S] {
	if commandType == "" {
		panic("command type must not be empty")
	}

	if payload == nil || handle == nil {
		panic(fmt.Sprintf("%s command must have a payload schema and a handler", commandType))
	}

	return &commandDefinition[S, P]{commandType, payload, handle}
}

type commandDefinition[S, P any] struct {
	commandType string
	payload     schema.Schema[P]
	handler     Handler[S, P]
}

func (d *commandDefinition[S, P]) CommandType() string {
	return d.commandType
}

func (d *commandDefinition[S, P]) prepare(payload any) (invocation[S], error) {
	p, err := d.payload.Validate(payload)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, state *S) ([]message.EventInput, error) {
		return d.handler(ctx, p, state)
	}, nil
}

// CommandDefinitions is the set of command types that an aggregate of state S
// accepts.
type CommandDefinitions[S any] struct {
	events *EventDefinitions[S]
	byType map[string]CommandDefinition[S]
}

// DefineCommands returns the set of command types accepted by aggregates with
// the given state and events.
//
// It panics if more than one definition has the same command type.
func DefineCommands[S any](
	state *StateDefinition[S],
	events *EventDefinitions[S],
	defs ...CommandDefinition[S],
) *CommandDefinitions[S] {
	if state == nil || events == nil {
		panic("state and event definitions must not be nil")
	}

	if events.state != state {
		panic("events were defined for a different state")
	}

	commands := &CommandDefinitions[S]{
		events: events,
		byType: make(map[string]CommandDefinition[S], len(defs)),
	}

	for _, d := range defs {
		t := d.CommandType()
		if _, ok := commands.byType[t]; ok {
			panic(fmt.Sprintf("the %s command type is defined more than once", t))
		}

		commands.byType[t] = d
	}

	return commands
}

// Types returns the command type names, in sorted order.
func (d *CommandDefinitions[S]) Types() []string {
	return sortedKeys(d.byType)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

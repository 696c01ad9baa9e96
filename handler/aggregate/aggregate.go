// Package aggregate declares aggregates and executes commands against their
// instances.
package aggregate

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/handler/cache"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
	"github.com/google/uuid"
)

// Options is the configuration of an aggregate with state S.
type Options[S any] struct {
	// Name is the aggregate type name.
	Name string

	// State describes the aggregate's state.
	State *StateDefinition[S]

	// Events is the set of event types the aggregate produces.
	Events *EventDefinitions[S]

	// Commands is the set of command types the aggregate accepts.
	Commands *CommandDefinitions[S]
}

// Aggregate is a declared aggregate type.
type Aggregate interface {
	// Name returns the aggregate type name.
	Name() string

	// EventTypes returns the names of the event types the aggregate declares,
	// in sorted order.
	EventTypes() []string

	// CommandTypes returns the names of the command types the aggregate
	// accepts, in sorted order.
	CommandTypes() []string

	// NewHost returns a host that executes commands against instances of
	// this aggregate.
	NewHost(deps Dependencies) Host
}

// Build returns an aggregate from its definitions.
//
// It panics if the definitions were not defined against each other.
func Build[S any](opts Options[S]) Aggregate {
	if opts.Name == "" {
		panic("aggregate name must not be empty")
	}

	if opts.State == nil || opts.Events == nil || opts.Commands == nil {
		panic("the " + opts.Name + " aggregate must define its state, events and commands")
	}

	if opts.Events.state != opts.State || opts.Commands.events != opts.Events {
		panic("the " + opts.Name + " aggregate's definitions were not defined against each other")
	}

	return &definition[S]{opts}
}

type definition[S any] struct {
	opts Options[S]
}

func (d *definition[S]) Name() string {
	return d.opts.Name
}

func (d *definition[S]) EventTypes() []string {
	return d.opts.Events.Types()
}

func (d *definition[S]) CommandTypes() []string {
	return d.opts.Commands.Types()
}

func (d *definition[S]) NewHost(deps Dependencies) Host {
	if deps.StateStore == nil {
		panic("state store must not be nil")
	}

	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	if deps.Logger == nil {
		deps.Logger = logging.DefaultLogger
	}

	return &host[S]{
		opts: d.opts,
		deps: deps,
		cache: &cache.Cache[instance[S]]{
			TTL:    deps.CacheTTL,
			Logger: deps.Logger,
		},
	}
}

// Dependencies are the collaborators used by a host to execute commands.
type Dependencies struct {
	// StateStore is the store of aggregate state.
	StateStore persistence.StateStore

	// Clock returns the current time, used to timestamp events. If it is nil,
	// time.Now is used.
	Clock func() time.Time

	// NewID returns a new, unique event ID. If it is nil, a random UUID is
	// generated.
	NewID func() string

	// CacheTTL is the minimum period of time that an idle instance is kept in
	// memory. If it is non-positive, cache.DefaultTTL is used.
	CacheTTL time.Duration

	// Logger is the target for log messages about command execution. If it is
	// nil, logging.DefaultLogger is used.
	Logger logging.Logger
}

// Host hosts the instances of a single aggregate type.
type Host interface {
	// Actor returns the actor for the instance with the given ID.
	Actor(id string) Actor

	// Run evicts idle instances from memory until ctx is canceled.
	Run(ctx context.Context) error
}

// Actor is the sole writer of a single aggregate instance's state.
type Actor interface {
	// AggregateType returns the name of the aggregate type.
	AggregateType() string

	// AggregateID returns the ID of the aggregate instance.
	AggregateID() string

	// Execute executes a command against the instance and returns the events
	// it produced, in order.
	//
	// Calls against the same instance are serialized. It blocks until any
	// prior call completes or ctx is canceled.
	Execute(ctx context.Context, commandType string, payload any) ([]message.Event, error)
}

// instance is the in-memory representation of an aggregate instance.
type instance[S any] struct {
	State  S
	Exists bool
}

type host[S any] struct {
	opts  Options[S]
	deps  Dependencies
	cache *cache.Cache[instance[S]]
}

func (h *host[S]) Actor(id string) Actor {
	return &actor[S]{h, id}
}

func (h *host[S]) Run(ctx context.Context) error {
	return h.cache.Run(ctx)
}

// Package escf is an event-sourcing runtime.
//
// Aggregates accept commands and produce events. A System executes commands
// against aggregate instances, records the resulting events in an optional
// event store and delivers them to projections and processes.
package escf

import (
	"context"
	"fmt"
	"sync"

	"github.com/dogmatiq/dodeca/logging"

	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/internal/metrics"
	"github.com/dogmatiq/escf/internal/semaphore"
	"github.com/dogmatiq/escf/internal/tracing"
	"github.com/dogmatiq/escf/internal/x/syncx"
	"github.com/dogmatiq/escf/persistence"
)

// Config describes the aggregates and models that make up a system.
//
// E is the type of the environment passed to the system by each caller. It is
// the source of any bindings to external resources used by the models and the
// event store.
type Config[E any] struct {
	// Aggregates is the set of aggregates that accept commands.
	Aggregates []aggregate.Aggregate

	// Projections is the set of projections, keyed by name.
	Projections map[string]handler.Constructor[E]

	// Processes is the set of processes, keyed by name.
	Processes map[string]handler.Constructor[E]

	// EventStore returns the event store to which every event is appended
	// before it is delivered to any model. If it is nil, events are not
	// stored.
	EventStore func(env E) (persistence.EventStore, error)
}

// System executes commands against aggregates and delivers the resulting
// events to projections and processes.
type System[E any] struct {
	config  Config[E]
	opts    *systemOptions
	known   map[string]struct{} // event types declared by the aggregates
	sem     semaphore.Semaphore
	tracer  *tracing.Tracer
	metrics *metrics.Metrics
	replays syncx.MutexNamespace
	warned  sync.Map // model name -> struct{}, models already checked
}

// New returns a new system.
func New[E any](cfg Config[E], options ...SystemOption) (*System[E], error) {
	known := map[string]struct{}{}
	names := map[string]struct{}{}

	for _, a := range cfg.Aggregates {
		if _, ok := names[a.Name()]; ok {
			return nil, fmt.Errorf("the %s aggregate is defined more than once", a.Name())
		}
		names[a.Name()] = struct{}{}

		for _, t := range a.EventTypes() {
			known[t] = struct{}{}
		}
	}

	for n := range cfg.Processes {
		if _, ok := cfg.Projections[n]; ok {
			return nil, fmt.Errorf("%s is both a projection and a process", n)
		}
	}

	opts := resolveSystemOptions(cfg.Aggregates, options...)

	m, err := metrics.New(opts.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("unable to register metrics: %w", err)
	}

	return &System[E]{
		config:  cfg,
		opts:    opts,
		known:   known,
		sem:     semaphore.New(int(opts.ConcurrencyLimit)),
		tracer:  tracing.NewTracer(opts.TracerProvider),
		metrics: m,
	}, nil
}

// GetAggregate returns a handle for executing commands against an aggregate
// instance.
//
// If id is empty, a new instance ID is generated.
func (s *System[E]) GetAggregate(env E, name, id string) (*AggregateHandle[E], error) {
	if !s.hasAggregate(name) {
		return nil, aggregate.UnknownAggregateError{Aggregate: name}
	}

	if id == "" {
		id = s.opts.NewID()
	}

	return &AggregateHandle[E]{
		system:        s,
		env:           env,
		aggregateType: name,
		id:            id,
	}, nil
}

// GetProjection returns the projection with the given name, constructed for
// the given environment.
//
// Use Methods() to obtain the methods exposed by the projection.
func (s *System[E]) GetProjection(env E, name string) (handler.Model, error) {
	c, ok := s.config.Projections[name]
	if !ok {
		return nil, UnknownProjectionError{name}
	}

	return s.construct(env, name, c)
}

// Methods returns the methods exposed by the projection with the given name,
// constructed for the given environment.
func Methods[M, E any](s *System[E], env E, name string) (M, error) {
	var zero M

	m, err := s.GetProjection(env, name)
	if err != nil {
		return zero, err
	}

	p, ok := m.(interface{ Methods() M })
	if !ok {
		return zero, fmt.Errorf(
			"the %s projection does not expose methods of type %T",
			name,
			zero,
		)
	}

	return p.Methods(), nil
}

// Run performs background maintenance, such as evicting idle aggregate
// instances from memory, until ctx is canceled.
func (s *System[E]) Run(ctx context.Context) error {
	if r, ok := s.opts.Locator.(interface {
		Run(context.Context) error
	}); ok {
		return r.Run(ctx)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *System[E]) hasAggregate(name string) bool {
	for _, a := range s.config.Aggregates {
		if a.Name() == name {
			return true
		}
	}

	return false
}

// model returns the projection or process with the given name.
func (s *System[E]) model(env E, name string) (handler.Model, error) {
	if c, ok := s.config.Projections[name]; ok {
		return s.construct(env, name, c)
	}

	if c, ok := s.config.Processes[name]; ok {
		return s.construct(env, name, c)
	}

	return nil, UnknownModelError{Name: name}
}

// construct constructs a model.
//
// The first time a model is constructed, any handler for an event type that
// is not declared by the system's aggregates is logged. Such handlers are
// still invoked, as events of undeclared types are delivered like any other.
func (s *System[E]) construct(
	env E,
	name string,
	c handler.Constructor[E],
) (handler.Model, error) {
	m, err := c(env)
	if err != nil {
		return nil, err
	}

	if _, loaded := s.warned.LoadOrStore(name, struct{}{}); !loaded {
		for _, t := range m.EventTypes() {
			if _, ok := s.known[t]; !ok {
				logging.Log(
					s.opts.Logger,
					"the %s %s handles %s events, which are not declared by any aggregate",
					name,
					m.Kind(),
					t,
				)
			}
		}
	}

	return m, nil
}

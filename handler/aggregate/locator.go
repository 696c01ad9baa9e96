package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Locator resolves an aggregate type name and instance ID to the actor that
// owns that instance.
type Locator interface {
	Resolve(ctx context.Context, aggregateType, id string) (Actor, error)
}

// LocalLocator is a Locator for actors hosted within this process.
type LocalLocator struct {
	hosts map[string]Host
}

var _ Locator = (*LocalLocator)(nil)

// NewLocalLocator returns a locator that hosts the given aggregates in this
// process.
//
// It panics if more than one aggregate has the same name.
func NewLocalLocator(deps Dependencies, aggregates ...Aggregate) *LocalLocator {
	l := &LocalLocator{
		hosts: make(map[string]Host, len(aggregates)),
	}

	for _, a := range aggregates {
		n := a.Name()
		if _, ok := l.hosts[n]; ok {
			panic("the " + n + " aggregate is defined more than once")
		}

		l.hosts[n] = a.NewHost(deps)
	}

	return l
}

// Resolve returns the actor for the instance of the given aggregate type with
// the given ID.
func (l *LocalLocator) Resolve(_ context.Context, aggregateType, id string) (Actor, error) {
	if h, ok := l.hosts[aggregateType]; ok {
		return h.Actor(id), nil
	}

	return nil, UnknownAggregateError{aggregateType}
}

// Run evicts idle instances of every hosted aggregate until ctx is canceled.
func (l *LocalLocator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, h := range l.hosts {
		h := h
		g.Go(func() error {
			return h.Run(ctx)
		})
	}

	return g.Wait()
}

package escf

import (
	"context"
	"errors"
	"sort"

	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/internal/mlog"
	"github.com/dogmatiq/escf/internal/tracing"
	"github.com/dogmatiq/escf/message"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// deliver delivers events to every projection and process.
//
// Models are delivered to concurrently, subject to the system's concurrency
// limit. Deliveries nested within another delivery of the same system do not
// count towards the limit. A failure of one model does not prevent delivery to the others.
func (s *System[E]) deliver(ctx context.Context, env E, events []message.Event) error {
	names := s.modelNames()
	errs := make([]error, len(names))

	var g errgroup.Group

	for i, n := range names {
		i, n := i, n
		g.Go(func() error {
			if err := s.deliverTo(ctx, env, n, events); err != nil {
				errs[i] = &DeliveryError{Model: n, Cause: err}
			}
			return nil
		})
	}

	g.Wait() // nolint:errcheck

	return multierr.Combine(errs...)
}

// deliverTo delivers events to a single model.
func (s *System[E]) deliverTo(
	ctx context.Context,
	env E,
	name string,
	events message.Batch,
) error {
	// A delivery started by a model's handler, such as a process executing a
	// command, runs within the slot already held by the outer delivery.
	if ctx.Value(deliveryKey{}) != any(s) {
		if err := s.sem.Acquire(ctx); err != nil {
			return err
		}
		defer s.sem.Release()

		ctx = context.WithValue(ctx, deliveryKey{}, any(s))
	}

	m, err := s.model(env, name)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.StartDeliver(ctx, m, len(events))

	err = m.Queue(ctx, events)

	tracing.End(span, err)
	s.metrics.ObserveDelivery(name, err)
	s.logDelivery(m, events, err)

	return err
}

// deliveryKey is the context key under which a delivery records the system
// that holds its concurrency slot.
type deliveryKey struct{}

// logDelivery logs the result of delivering each event in batch to m.
func (s *System[E]) logDelivery(m handler.Model, batch message.Batch, err error) {
	failed := len(batch)

	var batchErr *handler.BatchError
	if errors.As(err, &batchErr) {
		failed = batchErr.Index
		err = batchErr.Cause
	} else if err != nil {
		failed = 0
	}

	for i, ev := range batch {
		var e error
		if i == failed {
			e = err
		} else if i > failed {
			break
		}

		func() {
			defer mlog.LogDeliveryResult(s.opts.Logger, ev, m.Kind(), m.Name(), &e)
		}()
	}
}

// modelNames returns the names of every projection and process, in sorted
// order.
func (s *System[E]) modelNames() []string {
	names := make([]string, 0, len(s.config.Projections)+len(s.config.Processes))

	for n := range s.config.Projections {
		names = append(names, n)
	}

	for n := range s.config.Processes {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// delivered returns the number of events in a batch that were delivered
// successfully before err occurred.
func delivered(err error) int {
	var batchErr *handler.BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Index
	}

	return 0
}

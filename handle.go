package escf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/internal/metrics"
	"github.com/dogmatiq/escf/internal/tracing"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/rpc"
)

// AggregateHandle executes commands against a single aggregate instance.
type AggregateHandle[E any] struct {
	system        *System[E]
	env           E
	aggregateType string
	id            string
}

// AggregateType returns the name of the aggregate type.
func (h *AggregateHandle[E]) AggregateType() string {
	return h.aggregateType
}

// AggregateID returns the ID of the aggregate instance.
func (h *AggregateHandle[E]) AggregateID() string {
	return h.id
}

// ExecuteSync executes a command against the aggregate instance and returns
// the instance's ID.
//
// The resulting events are appended to the event store, in order, before they
// are delivered to any model. Every projection and process is delivered to
// concurrently, each receiving the events in the order they were produced.
//
// If any model fails, the error returned is a *DeliveryError, or several of
// them combined with multierr. In that case the instance ID is still returned,
// since the command itself has taken effect.
func (h *AggregateHandle[E]) ExecuteSync(
	ctx context.Context,
	commandType string,
	payload any,
) (_ string, err error) {
	s := h.system
	start := time.Now()

	ctx, span := s.tracer.StartExecute(ctx, h.aggregateType, h.id, commandType)

	var events []message.Event
	defer func() {
		tracing.End(span, err, tracing.EventCountKey.Int(len(events)))
		s.metrics.ObserveCommand(h.aggregateType, commandType, result(err), time.Since(start))
	}()

	actor, err := s.opts.Locator.Resolve(ctx, h.aggregateType, h.id)
	if err != nil {
		return "", err
	}

	events, err = actor.Execute(ctx, commandType, payload)
	if err != nil {
		return "", err
	}

	for _, ev := range events {
		s.metrics.ObserveEvent(ev.AggregateType, ev.Type)
	}

	if len(events) == 0 {
		return h.id, nil
	}

	if err := s.store(ctx, h.env, events); err != nil {
		return "", err
	}

	return h.id, s.deliver(ctx, h.env, events)
}

// store appends events to the event store, if there is one.
func (s *System[E]) store(ctx context.Context, env E, events []message.Event) error {
	if s.config.EventStore == nil {
		return nil
	}

	es, err := s.config.EventStore(env)
	if err != nil {
		return fmt.Errorf("unable to obtain the event store: %w", err)
	}

	for _, ev := range events {
		if err := es.AddEvent(ctx, ev); err != nil {
			return fmt.Errorf(
				"unable to append %s event %s to the event store: %w",
				ev.Type,
				ev.ID,
				err,
			)
		}
	}

	return nil
}

// result returns the metrics result label for a command error.
func result(err error) string {
	if err == nil {
		return metrics.ResultOK
	}

	var reqErr *rpc.RequestError
	if errors.As(err, &reqErr) {
		return metrics.ResultRejected
	}

	if errors.As(err, new(aggregate.CommandNotFoundError)) ||
		errors.As(err, new(aggregate.CommandValidationError)) ||
		errors.As(err, new(aggregate.EventValidationError)) ||
		errors.As(err, new(aggregate.StateValidationError)) {
		return metrics.ResultInvalid
	}

	return metrics.ResultError
}

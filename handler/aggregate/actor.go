package aggregate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dogmatiq/escf/handler/cache"
	"github.com/dogmatiq/escf/internal/mlog"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
)

// actor is an Actor for a single instance hosted by a host.
type actor[S any] struct {
	host *host[S]
	id   string
}

func (a *actor[S]) AggregateType() string {
	return a.host.opts.Name
}

func (a *actor[S]) AggregateID() string {
	return a.id
}

func (a *actor[S]) Execute(
	ctx context.Context,
	commandType string,
	payload any,
) (_ []message.Event, err error) {
	name := a.host.opts.Name
	logger := a.host.deps.Logger

	defer func() {
		if err != nil {
			mlog.LogCommandError(logger, name, a.id, commandType, err)
		}
	}()

	cmd, ok := a.host.opts.Commands.byType[commandType]
	if !ok {
		return nil, CommandNotFoundError{name, commandType}
	}

	invoke, err := cmd.prepare(payload)
	if err != nil {
		return nil, CommandValidationError{name, commandType, err}
	}

	rec, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	mlog.LogCommand(logger, name, a.id, commandType)

	var current *S
	if rec.Instance.Exists {
		s := rec.Instance.State
		current = &s
	}

	inputs, err := invoke(ctx, current)
	if err != nil {
		// The handler only saw a copy, so the instance is still valid.
		rec.KeepAlive()
		return nil, err
	}

	if len(inputs) == 0 {
		rec.KeepAlive()
		return nil, nil
	}

	events := a.stamp(inputs)

	next, err := a.reduce(rec.Instance, events)
	if err != nil {
		return nil, err
	}

	if next.Exists {
		if err := a.save(ctx, next.State); err != nil {
			return nil, err
		}
	}

	// Only now that the state has been persisted is the in-memory instance
	// updated. Any earlier return discards the record instead.
	rec.Instance = next
	rec.KeepAlive()

	for _, ev := range events {
		mlog.LogProduce(logger, ev)
	}

	return events, nil
}

// acquire locks the cache record for the instance, loading its state from the
// store if it is not already in memory.
func (a *actor[S]) acquire(ctx context.Context) (*cache.Record[instance[S]], error) {
	rec, err := a.host.cache.Acquire(ctx, a.id)
	if err != nil {
		return nil, err
	}

	if rec.Loaded {
		return rec, nil
	}

	inst, err := a.load(ctx)
	if err != nil {
		rec.Release()
		return nil, err
	}

	rec.Instance = inst
	rec.Loaded = true

	return rec, nil
}

// load reads the instance's state from the store.
func (a *actor[S]) load(ctx context.Context) (instance[S], error) {
	var inst instance[S]

	data, ok, err := a.host.deps.StateStore.LoadState(ctx, a.key())
	if err != nil || !ok {
		return inst, err
	}

	s, err := a.host.opts.State.schema.Validate(json.RawMessage(data))
	if err != nil {
		return inst, fmt.Errorf(
			"unable to load %s state for %s: %w",
			a.host.opts.Name,
			a.id,
			err,
		)
	}

	return instance[S]{s, true}, nil
}

// stamp converts the inputs returned by a command handler into events
// produced by this instance.
func (a *actor[S]) stamp(inputs []message.EventInput) []message.Event {
	now := a.host.deps.Clock().UnixMilli()
	events := make([]message.Event, len(inputs))

	for i, in := range inputs {
		events[i] = message.Event{
			ID:            a.host.deps.NewID(),
			Type:          in.Type,
			Payload:       in.Payload,
			Timestamp:     now,
			AggregateType: a.host.opts.Name,
			AggregateID:   a.id,
		}
	}

	return events
}

// reduce applies events to inst, in order.
//
// Events of undeclared types are skipped. The payload of each applied event is
// replaced with its validated value.
func (a *actor[S]) reduce(inst instance[S], events []message.Event) (instance[S], error) {
	name := a.host.opts.Name

	for i, ev := range events {
		def, ok := a.host.opts.Events.byType[ev.Type]
		if !ok {
			mlog.LogSkip(a.host.deps.Logger, ev)
			continue
		}

		p, next, err := def.reduce(inst.State, ev)
		if err != nil {
			return inst, EventValidationError{name, ev.Type, err}
		}

		next, err = a.host.opts.State.schema.Validate(next)
		if err != nil {
			return inst, StateValidationError{name, ev.Type, err}
		}

		events[i].Payload = p
		inst = instance[S]{next, true}
	}

	return inst, nil
}

// save persists the instance's state.
func (a *actor[S]) save(ctx context.Context, s S) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf(
			"unable to marshal %s state for %s: %w",
			a.host.opts.Name,
			a.id,
			err,
		)
	}

	return a.host.deps.StateStore.SaveState(ctx, a.key(), data)
}

func (a *actor[S]) key() persistence.StateKey {
	return persistence.StateKey{
		AggregateType: a.host.opts.Name,
		AggregateID:   a.id,
	}
}

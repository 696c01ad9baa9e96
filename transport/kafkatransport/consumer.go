package kafkatransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/internal/mlog"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

var (
	// DefaultBatchSize is the default maximum number of messages delivered to
	// a model at once.
	DefaultBatchSize = 100

	// DefaultBatchWait is the default period of time a consumer waits for
	// additional messages before delivering a partial batch.
	DefaultBatchWait = 50 * time.Millisecond

	// DefaultBackoff is the default strategy for delaying redelivery of
	// messages that a model failed to handle.
	DefaultBackoff backoff.Strategy = backoff.WithTransforms(
		backoff.Exponential(100*time.Millisecond),
		linger.FullJitter,
		linger.Limiter(0, 30*time.Second),
	)
)

// Reader is the subset of *kafka.Reader used by a Consumer.
//
// The reader must be a member of a consumer group so that messages can be
// committed.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer delivers events read from Kafka to a model.
//
// A message is committed only once its event, and every event before it in
// the same batch, has been handled. Events that fail are redelivered from the
// start of the failed event until they succeed, or until the consumer stops.
type Consumer struct {
	// Reader reads messages from Kafka.
	Reader Reader

	// Model is the model to which events are delivered.
	Model handler.Model

	// BatchSize is the maximum number of messages delivered to the model at
	// once. If it is zero, DefaultBatchSize is used.
	BatchSize int

	// BatchWait is how long to wait for more messages before delivering a
	// partial batch. If it is zero, DefaultBatchWait is used.
	BatchWait time.Duration

	// Backoff is the strategy used to delay redelivery. If it is nil,
	// DefaultBackoff is used.
	Backoff backoff.Strategy

	// Propagator extracts the trace context from each batch's first message.
	// If it is nil, propagation.TraceContext is used.
	Propagator propagation.TextMapPropagator

	// Logger is the target for log messages about consumed events. If it is
	// nil, logging.DefaultLogger is used.
	Logger logging.Logger
}

// entry is a message read from Kafka and the event it carries.
type entry struct {
	msg kafka.Message
	ev  message.Event
	ok  bool // false if the message did not contain a valid event
}

// Run delivers events to the model until ctx is canceled or an error occurs
// reading from Kafka.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		entries, err := c.fetch(ctx)
		if err != nil {
			return err
		}

		if err := c.deliver(ctx, entries); err != nil {
			return err
		}
	}
}

// fetch blocks until at least one message is available, then returns up to a
// full batch of messages.
func (c *Consumer) fetch(ctx context.Context) ([]entry, error) {
	m, err := c.Reader.FetchMessage(ctx)
	if err != nil {
		return nil, fetchError(ctx, err)
	}

	size := c.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	entries := []entry{c.decode(m)}

	waitCtx, cancel := linger.ContextWithTimeout(ctx, c.BatchWait, DefaultBatchWait)
	defer cancel()

	for len(entries) < size {
		m, err := c.Reader.FetchMessage(waitCtx)
		if err != nil {
			if ctx.Err() == nil && waitCtx.Err() != nil {
				break
			}
			return nil, fetchError(ctx, err)
		}

		entries = append(entries, c.decode(m))
	}

	return entries, nil
}

// decode returns the entry for m.
func (c *Consumer) decode(m kafka.Message) entry {
	var ev message.Event

	if err := json.Unmarshal(m.Value, &ev); err != nil {
		logging.Log(
			c.logger(),
			"unable to decode the message at offset %d of %s[%d], it will be skipped: %s",
			m.Offset,
			m.Topic,
			m.Partition,
			err,
		)

		return entry{msg: m}
	}

	return entry{msg: m, ev: ev, ok: true}
}

// deliver delivers the events in entries to the model, retrying until they
// have all been handled and committed.
func (c *Consumer) deliver(ctx context.Context, entries []entry) error {
	var failures uint

	for len(entries) > 0 {
		var (
			batch message.Batch
			index []int // index of each event's entry
		)

		for i, e := range entries {
			if e.ok {
				mlog.LogConsume(c.logger(), e.ev, failures)
				batch = append(batch, e.ev)
				index = append(index, i)
			}
		}

		err := c.queue(ctx, entries[0].msg, batch)

		n := len(entries)
		if err != nil {
			n = index[delivered(err)]
		}

		if n > 0 {
			if err := c.Reader.CommitMessages(ctx, messages(entries[:n])...); err != nil {
				return fmt.Errorf("unable to commit messages: %w", err)
			}

			entries = entries[n:]
			failures = 0
		}

		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		failures++

		strategy := c.Backoff
		if strategy == nil {
			strategy = DefaultBackoff
		}

		cause := err
		var batchErr *handler.BatchError
		if errors.As(err, &batchErr) {
			cause = batchErr.Cause
		}

		delay := strategy(cause, failures)
		mlog.LogNack(c.logger(), entries[0].ev, cause, delay)

		if err := linger.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return nil
}

// queue delivers batch to the model within the trace context carried by m.
func (c *Consumer) queue(ctx context.Context, m kafka.Message, batch message.Batch) error {
	if len(batch) == 0 {
		return nil
	}

	ctx = propagator(c.Propagator).Extract(ctx, HeaderCarrier{&m})

	return c.Model.Queue(ctx, batch)
}

func (c *Consumer) logger() logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return logging.DefaultLogger
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

func messages(entries []entry) []kafka.Message {
	msgs := make([]kafka.Message, len(entries))
	for i, e := range entries {
		msgs[i] = e.msg
	}
	return msgs
}

func fetchError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return fmt.Errorf("unable to fetch message: %w", err)
}

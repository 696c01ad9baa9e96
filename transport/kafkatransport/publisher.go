package kafkatransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/message"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultPublisherName is the model name used by a Publisher with an empty
// ModelName.
const DefaultPublisherName = "kafka"

// Writer is the subset of *kafka.Writer used by a Publisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher is a process that writes events to a Kafka topic.
//
// Each event is encoded as JSON and keyed by its aggregate ID, so that the
// events of a single aggregate instance are kept in order within a partition.
type Publisher struct {
	// ModelName is the name of the process. If it is empty, DefaultPublisherName is
	// used.
	ModelName string

	// Writer writes the messages to Kafka.
	Writer Writer

	// Topic is the topic to which messages are written. It may be empty if the
	// Writer has a topic of its own.
	Topic string

	// Types is the set of event types to publish. If it is empty, every
	// event is published.
	Types []string

	// Propagator injects the trace context into each message's headers. If it
	// is nil, propagation.TraceContext is used.
	Propagator propagation.TextMapPropagator
}

var _ handler.Model = (*Publisher)(nil)

// Name returns the model's name.
func (p *Publisher) Name() string {
	if p.ModelName != "" {
		return p.ModelName
	}

	return DefaultPublisherName
}

// Kind returns handler.ProcessKind.
func (p *Publisher) Kind() handler.Kind {
	return handler.ProcessKind
}

// EventTypes returns the types of the events that are published.
func (p *Publisher) EventTypes() []string {
	return p.Types
}

// OnEvent publishes a single event.
func (p *Publisher) OnEvent(ctx context.Context, ev message.Event) error {
	return p.Queue(ctx, message.Batch{ev})
}

// Queue publishes a batch of events in a single write.
//
// If some of the messages could not be written the error is a
// *handler.BatchError referring to the first of them.
func (p *Publisher) Queue(ctx context.Context, batch message.Batch) error {
	var (
		msgs  []kafka.Message
		index []int // index of each message's event within batch
	)

	for i, ev := range batch {
		if len(p.Types) > 0 && !slices.Contains(p.Types, ev.Type) {
			continue
		}

		m, err := p.marshal(ctx, ev)
		if err != nil {
			return &handler.BatchError{Index: i, Event: ev, Cause: err}
		}

		msgs = append(msgs, m)
		index = append(index, i)
	}

	if len(msgs) == 0 {
		return nil
	}

	err := p.Writer.WriteMessages(ctx, msgs...)
	if err == nil {
		return nil
	}

	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for j, e := range writeErrs {
			if e != nil {
				i := index[j]
				return &handler.BatchError{Index: i, Event: batch[i], Cause: e}
			}
		}
	}

	i := index[0]
	return &handler.BatchError{Index: i, Event: batch[i], Cause: err}
}

// marshal returns the Kafka message that carries ev.
func (p *Publisher) marshal(ctx context.Context, ev message.Event) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("unable to marshal %s event: %w", ev.Type, err)
	}

	m := kafka.Message{
		Topic: p.Topic,
		Key:   []byte(ev.AggregateID),
		Value: data,
		Headers: []kafka.Header{
			{Key: EventIDHeader, Value: []byte(ev.ID)},
			{Key: EventTypeHeader, Value: []byte(ev.Type)},
			{Key: AggregateTypeHeader, Value: []byte(ev.AggregateType)},
		},
		Time: ev.Time(),
	}

	propagator(p.Propagator).Inject(ctx, HeaderCarrier{&m})

	return m, nil
}

func propagator(p propagation.TextMapPropagator) propagation.TextMapPropagator {
	if p != nil {
		return p
	}

	return propagation.TraceContext{}
}

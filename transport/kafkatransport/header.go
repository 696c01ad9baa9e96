package kafkatransport

import (
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

const (
	// EventIDHeader is the message header containing the event ID.
	EventIDHeader = "event-id"

	// EventTypeHeader is the message header containing the event type.
	EventTypeHeader = "event-type"

	// AggregateTypeHeader is the message header containing the name of the
	// aggregate that produced the event.
	AggregateTypeHeader = "aggregate-type"
)

// HeaderCarrier adapts the headers of a Kafka message to a
// propagation.TextMapCarrier.
type HeaderCarrier struct {
	Message *kafka.Message
}

var _ propagation.TextMapCarrier = HeaderCarrier{}

// Get returns the value of the header with the given key.
func (c HeaderCarrier) Get(key string) string {
	for _, h := range c.Message.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}

	return ""
}

// Set sets the value of the header with the given key, replacing any existing
// value.
func (c HeaderCarrier) Set(key, value string) {
	for i, h := range c.Message.Headers {
		if h.Key == key {
			c.Message.Headers[i].Value = []byte(value)
			return
		}
	}

	c.Message.Headers = append(
		c.Message.Headers,
		kafka.Header{Key: key, Value: []byte(value)},
	)
}

// Keys returns the keys of all headers.
func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Message.Headers))
	for _, h := range c.Message.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}

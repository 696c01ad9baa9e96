package tracing

import (
	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/message"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// AggregateTypeKey is a span attribute key for the name of an aggregate
	// type.
	AggregateTypeKey = attribute.Key("escf.aggregate.type")

	// AggregateIDKey is a span attribute key for the ID of an aggregate
	// instance.
	AggregateIDKey = attribute.Key("escf.aggregate.id")

	// CommandTypeKey is a span attribute key for the type of a command.
	CommandTypeKey = attribute.Key("escf.command.type")

	// EventCountKey is a span attribute key for the number of events produced
	// by a command or delivered to a model.
	EventCountKey = attribute.Key("escf.event.count")
)

var (
	// ModelNameKey is a span attribute key for the name of a model.
	ModelNameKey = attribute.Key("escf.model.name")

	// ModelKindKey is a span attribute key for the kind of a model.
	ModelKindKey = attribute.Key("escf.model.kind")
)

var (
	// EventIDKey is a span attribute key for the ID of an event.
	EventIDKey = attribute.Key("escf.event.id")

	// EventTypeKey is a span attribute key for the type of an event.
	EventTypeKey = attribute.Key("escf.event.type")
)

// CommandAttributes returns the standard attributes describing a command
// executed against an aggregate instance.
func CommandAttributes(aggregateType, id, commandType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AggregateTypeKey.String(aggregateType),
		AggregateIDKey.String(id),
		CommandTypeKey.String(commandType),
	}
}

// ModelAttributes returns the standard attributes describing a model.
func ModelAttributes(m handler.Model) []attribute.KeyValue {
	return []attribute.KeyValue{
		ModelNameKey.String(m.Name()),
		ModelKindKey.String(m.Kind().String()),
	}
}

// EventAttributes returns the standard attributes describing an event.
func EventAttributes(ev message.Event) []attribute.KeyValue {
	return []attribute.KeyValue{
		EventIDKey.String(ev.ID),
		EventTypeKey.String(ev.Type),
		AggregateTypeKey.String(ev.AggregateType),
		AggregateIDKey.String(ev.AggregateID),
	}
}

// Package tracing creates OpenTelemetry spans for command execution and event
// delivery.
package tracing

import (
	"context"

	"github.com/dogmatiq/escf/handler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the name of the tracer used by escf.
const InstrumentationName = "github.com/dogmatiq/escf"

const (
	// ExecuteSpanName is the name of the span that covers the execution of a
	// command, including the delivery of its events.
	ExecuteSpanName = "escf.execute"

	// DeliverSpanName is the name of the span that covers the delivery of a
	// command's events to a single model.
	DeliverSpanName = "escf.deliver"
)

// Tracer creates spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a tracer that uses the given provider.
//
// If tp is nil, the global tracer provider is used.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: tp.Tracer(InstrumentationName),
	}
}

// StartExecute starts a span for the execution of a command.
func (t *Tracer) StartExecute(
	ctx context.Context,
	aggregateType, id, commandType string,
) (context.Context, trace.Span) {
	return t.tracer.Start(
		ctx,
		ExecuteSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			CommandAttributes(aggregateType, id, commandType)...,
		),
	)
}

// StartDeliver starts a span for the delivery of n events to a model.
func (t *Tracer) StartDeliver(
	ctx context.Context,
	m handler.Model,
	n int,
) (context.Context, trace.Span) {
	attrs := append(
		ModelAttributes(m),
		EventCountKey.Int(n),
	)

	return t.tracer.Start(
		ctx,
		DeliverSpanName,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)
}

// End ends span, recording err if it is non-nil.
func End(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

package tracing_test

import (
	"context"
	"errors"

	"github.com/dogmatiq/escf/fixtures"
	"github.com/dogmatiq/escf/handler"
	. "github.com/dogmatiq/escf/internal/tracing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var _ = Describe("type Tracer", func() {
	var (
		recorder *tracetest.SpanRecorder
		tracer   *Tracer
	)

	BeforeEach(func() {
		recorder = tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		DeferCleanup(func() {
			tp.Shutdown(context.Background())
		})

		tracer = NewTracer(tp)
	})

	Describe("func StartExecute()", func() {
		It("starts a span describing the command", func() {
			_, span := tracer.StartExecute(context.Background(), "user", "<user>", "CreateUser")
			End(span, nil, EventCountKey.Int(1))

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(1))
			Expect(spans[0].Name()).To(Equal(ExecuteSpanName))
			Expect(spans[0].Status().Code).To(Equal(codes.Ok))
			Expect(spans[0].Attributes()).To(ContainElements(
				attribute.String("escf.aggregate.type", "user"),
				attribute.String("escf.aggregate.id", "<user>"),
				attribute.String("escf.command.type", "CreateUser"),
				attribute.Int("escf.event.count", 1),
			))
		})
	})

	Describe("func StartDeliver()", func() {
		It("starts a child span describing the model", func() {
			ctx, parent := tracer.StartExecute(context.Background(), "user", "<user>", "CreateUser")

			model := &fixtures.ModelStub{
				NameFunc: func() string { return "users" },
				KindFunc: func() handler.Kind { return handler.ProjectionKind },
			}

			_, span := tracer.StartDeliver(ctx, model, 2)
			End(span, errors.New("<error>"))
			End(parent, nil)

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(2))

			child := spans[0]
			Expect(child.Name()).To(Equal(DeliverSpanName))
			Expect(child.Parent().SpanID()).To(Equal(parent.SpanContext().SpanID()))
			Expect(child.Status().Code).To(Equal(codes.Error))
			Expect(child.Status().Description).To(Equal("<error>"))
			Expect(child.Attributes()).To(ContainElements(
				attribute.String("escf.model.name", "users"),
				attribute.String("escf.model.kind", "projection"),
				attribute.Int("escf.event.count", 2),
			))
		})
	})
})

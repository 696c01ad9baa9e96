package fixtures

import (
	"context"

	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/message"
)

// ModelStub is a test implementation of the handler.Model interface.
type ModelStub struct {
	handler.Model

	NameFunc       func() string
	KindFunc       func() handler.Kind
	EventTypesFunc func() []string
	OnEventFunc    func(context.Context, message.Event) error
	QueueFunc      func(context.Context, message.Batch) error
}

// Name returns the model's name.
func (m *ModelStub) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}

	if m.Model != nil {
		return m.Model.Name()
	}

	return "<model>"
}

// Kind returns the kind of the model.
func (m *ModelStub) Kind() handler.Kind {
	if m.KindFunc != nil {
		return m.KindFunc()
	}

	if m.Model != nil {
		return m.Model.Kind()
	}

	return handler.ProcessKind
}

// EventTypes returns the types of the events the model handles.
func (m *ModelStub) EventTypes() []string {
	if m.EventTypesFunc != nil {
		return m.EventTypesFunc()
	}

	if m.Model != nil {
		return m.Model.EventTypes()
	}

	return nil
}

// OnEvent handles a single event.
func (m *ModelStub) OnEvent(ctx context.Context, ev message.Event) error {
	if m.OnEventFunc != nil {
		return m.OnEventFunc(ctx, ev)
	}

	if m.Model != nil {
		return m.Model.OnEvent(ctx, ev)
	}

	return nil
}

// Queue handles a batch of events in order.
func (m *ModelStub) Queue(ctx context.Context, batch message.Batch) error {
	if m.QueueFunc != nil {
		return m.QueueFunc(ctx, batch)
	}

	if m.Model != nil {
		return m.Model.Queue(ctx, batch)
	}

	for _, ev := range batch {
		if err := m.OnEvent(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}

package fixtures

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// WriterStub is a test implementation of the kafkatransport.Writer interface.
//
// By default it records every message written to it.
type WriterStub struct {
	WriteMessagesFunc func(context.Context, ...kafka.Message) error

	m        sync.Mutex
	messages []kafka.Message
}

// WriteMessages writes messages to Kafka.
func (w *WriterStub) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.WriteMessagesFunc != nil {
		return w.WriteMessagesFunc(ctx, msgs...)
	}

	w.m.Lock()
	defer w.m.Unlock()
	w.messages = append(w.messages, msgs...)

	return nil
}

// Messages returns the messages written so far.
func (w *WriterStub) Messages() []kafka.Message {
	w.m.Lock()
	defer w.m.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

// ReaderStub is a test implementation of the kafkatransport.Reader interface.
//
// By default it returns the messages in its queue, in order, blocking when the
// queue is empty. Committed messages are recorded.
type ReaderStub struct {
	FetchMessageFunc   func(context.Context) (kafka.Message, error)
	CommitMessagesFunc func(context.Context, ...kafka.Message) error

	once      sync.Once
	queue     chan kafka.Message
	m         sync.Mutex
	committed []kafka.Message
}

// Push adds messages to the end of the reader's queue.
func (r *ReaderStub) Push(msgs ...kafka.Message) {
	r.init()
	for _, m := range msgs {
		r.queue <- m
	}
}

// FetchMessage returns the next message.
func (r *ReaderStub) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.FetchMessageFunc != nil {
		return r.FetchMessageFunc(ctx)
	}

	r.init()

	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.queue:
		return m, nil
	}
}

// CommitMessages commits the given messages.
func (r *ReaderStub) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if r.CommitMessagesFunc != nil {
		return r.CommitMessagesFunc(ctx, msgs...)
	}

	r.m.Lock()
	defer r.m.Unlock()
	r.committed = append(r.committed, msgs...)

	return nil
}

// Committed returns the messages committed so far.
func (r *ReaderStub) Committed() []kafka.Message {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]kafka.Message(nil), r.committed...)
}

func (r *ReaderStub) init() {
	r.once.Do(func() {
		r.queue = make(chan kafka.Message, 1000)
	})
}

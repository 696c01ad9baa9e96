package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/fixtures"
	. "github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
	"github.com/dogmatiq/escf/persistence/memory"
	"github.com/dogmatiq/escf/rpc"
	"github.com/dogmatiq/escf/schema"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Actor", func() {
	var (
		ctx    context.Context
		store  *fixtures.StateStoreStub
		saves  int
		now    time.Time
		logger *logging.BufferedLogger
		host   Host
		actor  Actor
		key    persistence.StateKey
	)

	newHost := func() Host {
		var (
			m   sync.Mutex
			seq int
		)

		return newCounter().NewHost(Dependencies{
			StateStore: store,
			Clock:      func() time.Time { return now },
			NewID: func() string {
				m.Lock()
				defer m.Unlock()
				seq++
				return fmt.Sprintf("<event-%d>", seq)
			},
			Logger: logger,
		})
	}

	loadState := func() (string, bool) {
		data, ok, err := store.LoadState(ctx, key)
		Expect(err).ShouldNot(HaveOccurred())
		return string(data), ok
	}

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		DeferCleanup(cancel)

		saves = 0
		store = &fixtures.StateStoreStub{
			StateStore: &memory.StateStore{},
		}
		store.SaveStateFunc = func(ctx context.Context, k persistence.StateKey, data []byte) error {
			saves++
			return store.StateStore.SaveState(ctx, k, data)
		}

		now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		logger = &logging.BufferedLogger{CaptureDebug: true}
		key = persistence.StateKey{AggregateType: "counter", AggregateID: "<counter>"}

		host = newHost()
		actor = host.Actor("<counter>")
	})

	It("exposes the identity of the instance", func() {
		Expect(actor.AggregateType()).To(Equal("counter"))
		Expect(actor.AggregateID()).To(Equal("<counter>"))
	})

	Describe("func Execute()", func() {
		It("returns the stamped events in order", func() {
			events, err := actor.Execute(ctx, "Open", map[string]any{"label": "<label>"})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(events).To(Equal([]message.Event{
				{
					ID:            "<event-1>",
					Type:          "Opened",
					Payload:       opened{"<label>"},
					Timestamp:     now.UnixMilli(),
					AggregateType: "counter",
					AggregateID:   "<counter>",
				},
			}))

			events, err = actor.Execute(ctx, "Add", map[string]any{"amount": 2, "repeats": 2})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(events).To(HaveLen(2))
			Expect(events[0].ID).To(Equal("<event-2>"))
			Expect(events[1].ID).To(Equal("<event-3>"))
		})

		It("persists the final state once per call", func() {
			_, err := actor.Execute(ctx, "Open", map[string]any{"label": "<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Add", add{Amount: 3, Repeats: 3})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(saves).To(Equal(2))

			data, ok := loadState()
			Expect(ok).To(BeTrue())
			Expect(data).To(MatchJSON(`{"label":"<label>","value":9}`))
		})

		It("passes a nil state to the handler if the instance does not exist", func() {
			_, err := actor.Execute(ctx, "Add", add{Amount: 1})
			Expect(err).To(Equal(rpc.WithStatus(404, "Not found")))
		})

		It("loads the state from the store", func() {
			err := store.SaveState(ctx, key, []byte(`{"label":"<label>","value":10}`))
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Add", add{Amount: 5})
			Expect(err).ShouldNot(HaveOccurred())

			data, _ := loadState()
			Expect(data).To(MatchJSON(`{"label":"<label>","value":15}`))
		})

		It("only loads the state from the store once", func() {
			loads := 0
			store.LoadStateFunc = func(ctx context.Context, k persistence.StateKey) ([]byte, bool, error) {
				loads++
				return store.StateStore.LoadState(ctx, k)
			}

			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Add", add{Amount: 1})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(loads).To(Equal(1))
		})

		It("keeps the state in memory when the handler rejects the command", func() {
			loads := 0
			store.LoadStateFunc = func(ctx context.Context, k persistence.StateKey) ([]byte, bool, error) {
				loads++
				return store.StateStore.LoadState(ctx, k)
			}

			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).To(Equal(rpc.New("Already open")))

			_, err = actor.Execute(ctx, "Add", add{Amount: 1})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(loads).To(Equal(1))
		})

		It("returns an error if the state can not be loaded", func() {
			store.LoadStateFunc = func(context.Context, persistence.StateKey) ([]byte, bool, error) {
				return nil, false, errors.New("<error>")
			}

			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).To(MatchError("<error>"))
		})

		It("returns an error if the persisted state is invalid", func() {
			err := store.SaveState(ctx, key, []byte(`{"value":1}`))
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Add", add{Amount: 1})
			Expect(err).To(MatchError(ContainSubstring("unable to load counter state for <counter>")))
		})

		It("returns an error if the command type is not declared", func() {
			_, err := actor.Execute(ctx, "Subtract", nil)
			Expect(err).To(Equal(CommandNotFoundError{
				Aggregate: "counter",
				Command:   "Subtract",
			}))
			Expect(err).To(MatchError("the counter aggregate does not accept Subtract commands"))
		})

		When("the command payload is invalid", func() {
			It("returns a validation error without invoking the handler", func() {
				_, err := actor.Execute(ctx, "Open", map[string]any{})

				var cmdErr CommandValidationError
				Expect(errors.As(err, &cmdErr)).To(BeTrue())
				Expect(cmdErr.Command).To(Equal("Open"))

				var valErr *schema.ValidationError
				Expect(errors.As(err, &valErr)).To(BeTrue())

				_, ok := loadState()
				Expect(ok).To(BeFalse())
				Expect(saves).To(BeZero())
			})
		})

		It("returns domain errors from the handler unchanged", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).To(Equal(rpc.New("Already open")))
		})

		It("skips events of undeclared types when reducing state", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			events, err := actor.Execute(ctx, "Annotate", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal("Annotated"))
			Expect(events[0].Payload).To(Equal(map[string]any{"note": "<note>"}))

			data, _ := loadState()
			Expect(data).To(MatchJSON(`{"label":"<label>","value":0}`))
		})

		It("does not persist anything if the handler produces no events", func() {
			events, err := actor.Execute(ctx, "Nothing", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(events).To(BeEmpty())
			Expect(saves).To(BeZero())
		})

		It("returns an error if an event payload is invalid", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			_, err = actor.Execute(ctx, "Corrupt", nil)

			var evErr EventValidationError
			Expect(errors.As(err, &evErr)).To(BeTrue())
			Expect(evErr.Event).To(Equal("Added"))
			Expect(saves).To(Equal(1))
		})

		When("a reduced state is invalid", func() {
			BeforeEach(func() {
				_, err := actor.Execute(ctx, "Open", open{"<label>"})
				Expect(err).ShouldNot(HaveOccurred())

				_, err = actor.Execute(ctx, "Add", add{Amount: 60})
				Expect(err).ShouldNot(HaveOccurred())
			})

			It("returns a state validation error", func() {
				_, err := actor.Execute(ctx, "Add", add{Amount: 30, Repeats: 2})

				var stateErr StateValidationError
				Expect(errors.As(err, &stateErr)).To(BeTrue())
				Expect(stateErr.Aggregate).To(Equal("counter"))
				Expect(stateErr.Event).To(Equal("Added"))
			})

			It("applies none of the events in the batch", func() {
				_, err := actor.Execute(ctx, "Add", add{Amount: 30, Repeats: 2})
				Expect(err).Should(HaveOccurred())

				data, _ := loadState()
				Expect(data).To(MatchJSON(`{"label":"<label>","value":60}`))

				// The next command sees the state as it was before the
				// failed batch.
				_, err = actor.Execute(ctx, "Add", add{Amount: 40})
				Expect(err).ShouldNot(HaveOccurred())

				data, _ = loadState()
				Expect(data).To(MatchJSON(`{"label":"<label>","value":100}`))
			})
		})

		It("discards the in-memory state if it can not be persisted", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			store.SaveStateFunc = func(context.Context, persistence.StateKey, []byte) error {
				return errors.New("<error>")
			}

			_, err = actor.Execute(ctx, "Add", add{Amount: 1})
			Expect(err).To(MatchError("<error>"))

			store.SaveStateFunc = nil

			_, err = actor.Execute(ctx, "Add", add{Amount: 2})
			Expect(err).ShouldNot(HaveOccurred())

			data, _ := loadState()
			Expect(data).To(MatchJSON(`{"label":"<label>","value":2}`))
		})

		It("serializes concurrent calls against the same instance", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			const n = 50

			var g sync.WaitGroup
			for i := 0; i < n; i++ {
				g.Add(1)
				go func() {
					defer GinkgoRecover()
					defer g.Done()

					_, err := host.Actor("<counter>").Execute(ctx, "Add", add{Amount: 1})
					Expect(err).ShouldNot(HaveOccurred())
				}()
			}
			g.Wait()

			data, _ := loadState()
			Expect(data).To(MatchJSON(`{"label":"<label>","value":` + strconv.Itoa(n) + `}`))
		})

		It("produces the same events and state when replayed against a fresh host", func() {
			run := func() ([]message.Event, string) {
				store.StateStore = &memory.StateStore{}
				h := newHost()

				var all []message.Event
				for _, c := range []struct {
					cmd     string
					payload any
				}{
					{"Open", open{"<label>"}},
					{"Add", add{Amount: 4, Repeats: 2}},
					{"Annotate", nil},
				} {
					events, err := h.Actor("<counter>").Execute(ctx, c.cmd, c.payload)
					Expect(err).ShouldNot(HaveOccurred())
					all = append(all, events...)
				}

				data, _ := loadState()
				return all, data
			}

			events1, state1 := run()
			events2, state2 := run()

			Expect(events2).To(Equal(events1))
			Expect(state2).To(Equal(state1))
		})

		It("returns an error if the context is canceled while waiting for another call", func() {
			blocked := make(chan struct{})
			release := make(chan struct{})

			slow := newSlowAggregate(blocked, release)
			h := slow.NewHost(Dependencies{StateStore: &memory.StateStore{}})

			go func() {
				defer GinkgoRecover()
				_, err := h.Actor("<id>").Execute(ctx, "Wait", nil)
				Expect(err).ShouldNot(HaveOccurred())
			}()

			<-blocked
			defer close(release)

			waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()

			_, err := h.Actor("<id>").Execute(waitCtx, "Wait", nil)
			Expect(err).To(Equal(context.DeadlineExceeded))
		})

		It("logs the command and the events it produced", func() {
			_, err := actor.Execute(ctx, "Open", open{"<label>"})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(logger.Messages()).To(ContainElements(
				logging.BufferedLogMessage{
					Message: "⋲ <counter>  ▼ ∴  counter ● Open",
				},
				logging.BufferedLogMessage{
					Message: "= <event-1>  ⋲ <counter>  ▲ ∴  counter ● Opened",
				},
			))
		})
	})
})

// newSlowAggregate returns an aggregate with a "Wait" command that signals
// blocked and then waits for release to be closed.
func newSlowAggregate(blocked chan<- struct{}, release <-chan struct{}) Aggregate {
	state := DefineState(schema.Func(func(struct{}) error { return nil }))
	events := DefineEvents(state)

	return Build(Options[struct{}]{
		Name:   "slow",
		State:  state,
		Events: events,
		Commands: DefineCommands(
			state,
			events,
			Command(
				"Wait",
				schema.Null(),
				func(context.Context, schema.Nil, *struct{}) ([]message.EventInput, error) {
					close(blocked)
					<-release
					return nil, nil
				},
			),
		),
	})
}

package escf_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/dogmatiq/escf"
	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
	"github.com/dogmatiq/escf/persistence/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("func Replay()", func() {
	var (
		ctx         context.Context
		environment env
		log         *recorder
		config      Config[env]
		options     []SystemOption
	)

	seed := func(n int) {
		for i := 1; i <= n; i++ {
			err := environment.Events.AddEvent(ctx, message.Event{
				ID:            fmt.Sprintf("<event-%d>", i),
				Type:          "AccountCredited",
				AggregateType: "account",
				AggregateID:   fmt.Sprintf("<account-%d>", i%2),
				Payload:       accountCredited{Amount: 1},
			})
			Expect(err).ShouldNot(HaveOccurred())
		}
	}

	replay := func(q persistence.EventQuery) (int, error) {
		sys, err := New(config, options...)
		Expect(err).ShouldNot(HaveOccurred())
		return sys.Replay(ctx, environment, "balances", q)
	}

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		DeferCleanup(cancel)

		environment = env{Events: &memory.EventStore{}}
		log = &recorder{}

		config = Config[env]{
			Aggregates: []aggregate.Aggregate{newAccount()},
			Projections: map[string]handler.Constructor[env]{
				"balances": recordingModel("balances", handler.ProjectionKind, log),
			},
			EventStore: func(e env) (persistence.EventStore, error) {
				return e.Events, nil
			},
		}

		options = []SystemOption{
			WithLogger(&logging.BufferedLogger{}),
		}
	})

	It("delivers every event in the store to the model", func() {
		seed(3)

		n, err := replay(persistence.EventQuery{})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(log.IDs()).To(Equal([]string{"<event-1>", "<event-2>", "<event-3>"}))
	})

	It("pages through the store without duplicating events", func() {
		seed(DefaultReplayBatchSize*2 + 5)

		n, err := replay(persistence.EventQuery{})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(DefaultReplayBatchSize*2 + 5))

		ids := log.IDs()
		Expect(ids).To(HaveLen(n))
		Expect(ids[0]).To(Equal("<event-1>"))
		Expect(ids[DefaultReplayBatchSize]).To(Equal(fmt.Sprintf("<event-%d>", DefaultReplayBatchSize+1)))
		Expect(ids[n-1]).To(Equal(fmt.Sprintf("<event-%d>", n)))
	})

	It("honors the query's limit across pages", func() {
		seed(DefaultReplayBatchSize * 2)

		n, err := replay(persistence.EventQuery{Limit: DefaultReplayBatchSize + 1})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(DefaultReplayBatchSize + 1))
		Expect(log.IDs()).To(HaveLen(DefaultReplayBatchSize + 1))
	})

	It("starts at the query's starting event", func() {
		seed(3)

		n, err := replay(persistence.EventQuery{FromEventID: "<event-2>"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(log.IDs()).To(Equal([]string{"<event-2>", "<event-3>"}))
	})

	It("filters by aggregate ID", func() {
		seed(4)

		n, err := replay(persistence.EventQuery{AggregateID: "<account-1>"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(log.IDs()).To(Equal([]string{"<event-1>", "<event-3>"}))
	})

	It("returns the number of events delivered before a failure", func() {
		seed(3)

		config.Projections["balances"] = func(env) (handler.Model, error) {
			return &handler.Router{
				ModelName: "balances",
				Handlers: handler.EventHandlers{
					"AccountCredited": func(_ context.Context, ev message.Event) error {
						if ev.ID == "<event-3>" {
							return errors.New("<error>")
						}
						return nil
					},
				},
			}, nil
		}

		n, err := replay(persistence.EventQuery{})
		Expect(n).To(Equal(2))

		var delErr *DeliveryError
		Expect(errors.As(err, &delErr)).To(BeTrue())
		Expect(delErr.Model).To(Equal("balances"))
	})

	It("returns an error if the starting event does not exist", func() {
		_, err := replay(persistence.EventQuery{FromEventID: "<unknown>"})
		Expect(err).To(Equal(persistence.UnknownEventError{EventID: "<unknown>"}))
	})

	It("returns an error if the model does not exist", func() {
		sys, err := New(config, options...)
		Expect(err).ShouldNot(HaveOccurred())

		_, err = sys.Replay(ctx, environment, "audit", persistence.EventQuery{})
		Expect(err).To(Equal(UnknownModelError{Name: "audit"}))
	})

	It("returns an error if the system has no event store", func() {
		config.EventStore = nil

		_, err := replay(persistence.EventQuery{})
		Expect(err).To(Equal(ErrNoEventStore))
	})
})

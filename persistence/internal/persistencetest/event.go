package persistencetest

import (
	"context"
	"time"

	"github.com/dogmatiq/escf/internal/x/gomegax"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type payload struct {
	Value string `json:"value"`
}

// DeclareEventStoreTests declares generic behavioral tests for a specific
// persistence.EventStore implementation.
//
// setup is called before each test to produce an empty store. If the returned
// function is non-nil, it is called after the test to release the store.
func DeclareEventStoreTests(
	setup func(ctx context.Context) (persistence.EventStore, func()),
) {
	var (
		ctx    context.Context
		store  persistence.EventStore
		events []message.Event
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		DeferCleanup(cancel)

		var teardown func()
		store, teardown = setup(ctx)
		if teardown != nil {
			DeferCleanup(teardown)
		}

		events = []message.Event{
			newEvent("<event-1>", "<user-1>", "UserCreated"),
			newEvent("<event-2>", "<user-2>", "UserCreated"),
			newEvent("<event-3>", "<user-1>", "UserUpdated"),
			newEvent("<event-4>", "<user-1>", "UserDeleted"),
			newEvent("<event-5>", "<user-2>", "UserAuthenticated"),
		}
	})

	addEvents := func() {
		for _, ev := range events {
			err := store.AddEvent(ctx, ev)
			Expect(err).ShouldNot(HaveOccurred())
		}
	}

	Describe("func AddEvent()", func() {
		It("returns an error if the event ID is already in use", func() {
			addEvents()

			err := store.AddEvent(ctx, newEvent("<event-2>", "<user-3>", "UserCreated"))
			Expect(err).To(Equal(persistence.DuplicateEventError{EventID: "<event-2>"}))
		})

		It("persists every field of the event", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{Limit: 1})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(HaveLen(1))

			Expect(result[0]).To(gomegax.EqualEvent(events[0]))

			p, err := message.DecodePayload[payload](result[0])
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p).To(Equal(payload{"<event-1>"}))
		})
	})

	Describe("func GetEvents()", func() {
		It("returns an empty result if the store is empty", func() {
			result, err := store.GetEvents(ctx, persistence.EventQuery{})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(BeEmpty())
		})

		It("returns all events in the order they were added", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(eventIDs(result)).To(Equal([]string{
				"<event-1>",
				"<event-2>",
				"<event-3>",
				"<event-4>",
				"<event-5>",
			}))
		})

		It("includes the starting event", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{
				FromEventID: "<event-3>",
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(eventIDs(result)).To(Equal([]string{
				"<event-3>",
				"<event-4>",
				"<event-5>",
			}))
		})

		It("limits the number of events", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{
				FromEventID: "<event-2>",
				Limit:       2,
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(eventIDs(result)).To(Equal([]string{
				"<event-2>",
				"<event-3>",
			}))
		})

		It("filters events by aggregate ID", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{
				FromEventID: "<event-3>",
				AggregateID: "<user-2>",
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(eventIDs(result)).To(Equal([]string{
				"<event-5>",
			}))
		})

		It("applies the limit after filtering by aggregate ID", func() {
			addEvents()

			result, err := store.GetEvents(ctx, persistence.EventQuery{
				AggregateID: "<user-1>",
				Limit:       2,
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(eventIDs(result)).To(Equal([]string{
				"<event-1>",
				"<event-3>",
			}))
		})

		It("returns an error if the starting event does not exist", func() {
			addEvents()

			_, err := store.GetEvents(ctx, persistence.EventQuery{
				FromEventID: "<unknown>",
			})
			Expect(err).To(Equal(persistence.UnknownEventError{EventID: "<unknown>"}))
		})
	})

	Describe("func GetAggregateEvents()", func() {
		It("returns the events for a single instance in order", func() {
			addEvents()

			result, err := store.GetAggregateEvents(ctx, "<user-1>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(gomegax.EqualEvents(
				events[0],
				events[2],
				events[3],
			))
		})

		It("returns an empty result for an unknown instance", func() {
			addEvents()

			result, err := store.GetAggregateEvents(ctx, "<unknown>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})
}

func newEvent(id, aggregateID, eventType string) message.Event {
	return message.Event{
		ID:            id,
		Type:          eventType,
		Payload:       payload{id},
		Timestamp:     time.Now().UnixMilli(),
		AggregateType: "user",
		AggregateID:   aggregateID,
	}
}

func eventIDs(events []message.Event) []string {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}

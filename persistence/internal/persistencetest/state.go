package persistencetest

import (
	"context"
	"time"

	"github.com/dogmatiq/escf/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// DeclareStateStoreTests declares generic behavioral tests for a specific
// persistence.StateStore implementation.
//
// setup is called before each test to produce an empty store. If the returned
// function is non-nil, it is called after the test to release the store.
func DeclareStateStoreTests(
	setup func(ctx context.Context) (persistence.StateStore, func()),
) {
	var (
		ctx   context.Context
		store persistence.StateStore
		key   persistence.StateKey
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

		key = persistence.StateKey{
			AggregateType: "user",
			AggregateID:   "<user-1>",
		}
	})

	Describe("func LoadState()", func() {
		It("reports that the state does not exist if it has never been saved", func() {
			_, ok, err := store.LoadState(ctx, key)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("returns the most recently saved state", func() {
			err := store.SaveState(ctx, key, []byte(`{"name":"Alice"}`))
			Expect(err).ShouldNot(HaveOccurred())

			err = store.SaveState(ctx, key, []byte(`{"name":"Bob"}`))
			Expect(err).ShouldNot(HaveOccurred())

			data, ok, err := store.LoadState(ctx, key)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(string(data)).To(Equal(`{"name":"Bob"}`))
		})

		It("keeps the state of each aggregate type separate", func() {
			err := store.SaveState(ctx, key, []byte(`<user>`))
			Expect(err).ShouldNot(HaveOccurred())

			other := persistence.StateKey{
				AggregateType: "account",
				AggregateID:   key.AggregateID,
			}

			_, ok, err := store.LoadState(ctx, other)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("keeps the state of each instance separate", func() {
			err := store.SaveState(ctx, key, []byte(`<user-1>`))
			Expect(err).ShouldNot(HaveOccurred())

			other := persistence.StateKey{
				AggregateType: key.AggregateType,
				AggregateID:   "<user-2>",
			}

			err = store.SaveState(ctx, other, []byte(`<user-2>`))
			Expect(err).ShouldNot(HaveOccurred())

			data, _, err := store.LoadState(ctx, key)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(data)).To(Equal(`<user-1>`))
		})

		It("does not share memory with the data passed to SaveState()", func() {
			data := []byte(`<original>`)

			err := store.SaveState(ctx, key, data)
			Expect(err).ShouldNot(HaveOccurred())

			copy(data, `<modified>`)

			loaded, _, err := store.LoadState(ctx, key)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(loaded)).To(Equal(`<original>`))
		})
	})
}

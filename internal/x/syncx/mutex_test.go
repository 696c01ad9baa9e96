package syncx_test

import (
	"context"
	"time"

	. "github.com/dogmatiq/escf/internal/x/syncx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Mutex", func() {
	var (
		ctx   context.Context
		mutex *Mutex
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
		DeferCleanup(cancel)

		mutex = &Mutex{}
	})

	Describe("func Lock()", func() {
		It("blocks subsequent calls to Lock()", func() {
			err := mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())

			err = mutex.Lock(ctx)
			Expect(err).To(Equal(context.DeadlineExceeded))
		})

		It("returns an error if the context is already canceled", func() {
			ctx, cancel := context.WithCancel(ctx)
			cancel()

			err := mutex.Lock(ctx)
			Expect(err).To(Equal(context.Canceled))
		})
	})

	Describe("func TryLock()", func() {
		It("returns true if the mutex is unlocked", func() {
			Expect(mutex.TryLock()).To(BeTrue())
		})

		It("returns false if the mutex is locked", func() {
			err := mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(mutex.TryLock()).To(BeFalse())
		})
	})

	Describe("func Unlock()", func() {
		It("allows subsequent calls to Lock()", func() {
			err := mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())

			mutex.Unlock()

			err = mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("unblocks a pending call to Lock()", func() {
			err := mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())

			go func() {
				time.Sleep(5 * time.Millisecond)
				mutex.Unlock()
			}()

			err = mutex.Lock(ctx)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("panics if the mutex is not locked", func() {
			Expect(func() {
				mutex.Unlock()
			}).To(PanicWith("mutex is not locked"))
		})
	})
})

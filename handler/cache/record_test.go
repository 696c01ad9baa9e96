package cache_test

import (
	"context"
	"time"

	. "github.com/dogmatiq/escf/handler/cache"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Record", func() {
	var (
		ctx    context.Context
		cache  *Cache[string]
		record *Record[string]
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)
		DeferCleanup(cancel)

		cache = &Cache[string]{}

		var err error
		record, err = cache.Acquire(ctx, "<id>")
		Expect(err).ShouldNot(HaveOccurred())

		record.Instance = "<value>"
	})

	Describe("func Release()", func() {
		It("removes the record from the cache by default", func() {
			record.Release()

			Expect(cache.Len()).To(Equal(0))

			rec, err := cache.Acquire(ctx, "<id>")
			Expect(err).ShouldNot(HaveOccurred())
			defer rec.Release()

			Expect(rec.Instance).To(BeEmpty())
		})

		It("keeps the record if KeepAlive() is called", func() {
			record.KeepAlive()
			record.Release()

			rec, err := cache.Acquire(ctx, "<id>")
			Expect(err).ShouldNot(HaveOccurred())
			defer rec.Release()

			Expect(rec.Instance).To(Equal("<value>"))
		})

		It("requires KeepAlive() to be called by each holder", func() {
			record.KeepAlive()
			record.Release()

			rec, err := cache.Acquire(ctx, "<id>")
			Expect(err).ShouldNot(HaveOccurred())
			rec.Release()

			rec, err = cache.Acquire(ctx, "<id>")
			Expect(err).ShouldNot(HaveOccurred())
			defer rec.Release()

			Expect(rec.Instance).To(BeEmpty())
		})
	})
})

package persistence_test

import (
	"errors"

	. "github.com/dogmatiq/escf/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/multierr"
)

type closerFunc func() error

func (fn closerFunc) Close() error { return fn() }

var _ = Describe("type CloserSet", func() {
	Describe("func Close()", func() {
		It("closes every member in reverse order", func() {
			var order []int
			var set CloserSet

			set.Add(closerFunc(func() error { order = append(order, 1); return nil }))
			set.Add(closerFunc(func() error { order = append(order, 2); return nil }))

			err := set.Close()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(order).To(Equal([]int{2, 1}))
		})

		It("combines the errors from each member", func() {
			var set CloserSet
			set.Add(closerFunc(func() error { return errors.New("<error 1>") }))
			set.Add(closerFunc(func() error { return errors.New("<error 2>") }))

			err := set.Close()
			Expect(multierr.Errors(err)).To(HaveLen(2))
		})
	})
})

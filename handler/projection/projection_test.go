package projection_test

import (
	"context"
	"errors"

	"github.com/dogmatiq/escf/handler"
	. "github.com/dogmatiq/escf/handler/projection"
	"github.com/dogmatiq/escf/message"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type env struct {
	names *[]string
	err   error
}

type bindings struct {
	names *[]string
}

type methods struct {
	Names func() []string
}

type userCreated struct {
	Name string `json:"name"`
}

var _ = Describe("func New()", func() {
	var (
		names       []string
		constructor handler.Constructor[env]
	)

	BeforeEach(func() {
		names = nil

		constructor = New(
			"users",
			func(e env) (bindings, error) {
				return bindings{e.names}, e.err
			},
			func(b bindings) handler.EventHandlers {
				return handler.EventHandlers{
					"UserCreated": handler.On(
						func(_ context.Context, _ message.Event, p userCreated) error {
							*b.names = append(*b.names, p.Name)
							return nil
						},
					),
				}
			},
			func(b bindings) methods {
				return methods{
					Names: func() []string { return *b.names },
				}
			},
		)
	})

	It("returns a constructor for a projection", func() {
		m, err := constructor(env{names: &names})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(m.Name()).To(Equal("users"))
		Expect(m.Kind()).To(Equal(handler.ProjectionKind))
		Expect(m.EventTypes()).To(Equal([]string{"UserCreated"}))
	})

	It("binds the event handlers and methods to the environment", func() {
		m, err := constructor(env{names: &names})
		Expect(err).ShouldNot(HaveOccurred())

		err = m.Queue(context.Background(), message.Batch{
			{Type: "UserCreated", Payload: userCreated{"Ann"}},
			{Type: "UserCreated", Payload: userCreated{"Bob"}},
		})
		Expect(err).ShouldNot(HaveOccurred())

		p := m.(*Projection[methods])
		Expect(p.Methods().Names()).To(Equal([]string{"Ann", "Bob"}))
	})

	It("returns an error if the bindings can not be obtained", func() {
		_, err := constructor(env{err: errors.New("<error>")})
		Expect(err).To(MatchError("unable to bind the users projection: <error>"))
	})

	It("panics if the name is empty", func() {
		Expect(func() {
			New(
				"",
				func(env) (bindings, error) { return bindings{}, nil },
				func(bindings) handler.EventHandlers { return nil },
				func(bindings) methods { return methods{} },
			)
		}).To(PanicWith("projection name must not be empty"))
	})
})

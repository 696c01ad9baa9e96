package process_test

import (
	"context"
	"errors"

	"github.com/dogmatiq/escf/handler"
	. "github.com/dogmatiq/escf/handler/process"
	"github.com/dogmatiq/escf/message"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type env struct {
	sent *[]string
	err  error
}

type effects struct {
	Notify func(to string) error
}

var _ = Describe("func New()", func() {
	var (
		sent        []string
		constructor handler.Constructor[env]
	)

	BeforeEach(func() {
		sent = nil

		constructor = New(
			"notifications",
			func(e env) (*[]string, error) {
				return e.sent, e.err
			},
			func(s *[]string) effects {
				return effects{
					Notify: func(to string) error {
						*s = append(*s, to)
						return nil
					},
				}
			},
			func(f effects) handler.EventHandlers {
				return handler.EventHandlers{
					"UserCreated": func(_ context.Context, ev message.Event) error {
						return f.Notify(ev.AggregateID)
					},
				}
			},
		)
	})

	It("returns a constructor for a process", func() {
		m, err := constructor(env{sent: &sent})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(m.Name()).To(Equal("notifications"))
		Expect(m.Kind()).To(Equal(handler.ProcessKind))
		Expect(m.EventTypes()).To(Equal([]string{"UserCreated"}))
	})

	It("triggers side effects when handling events", func() {
		m, err := constructor(env{sent: &sent})
		Expect(err).ShouldNot(HaveOccurred())

		err = m.OnEvent(context.Background(), message.Event{
			Type:        "UserCreated",
			AggregateID: "<user>",
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(sent).To(Equal([]string{"<user>"}))
	})

	It("returns an error if the bindings can not be obtained", func() {
		_, err := constructor(env{err: errors.New("<error>")})
		Expect(err).To(MatchError("unable to bind the notifications process: <error>"))
	})
})

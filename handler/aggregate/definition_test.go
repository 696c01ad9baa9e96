package aggregate_test

import (
	"context"
	"time"

	. "github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/schema"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("func Build()", func() {
	It("returns an aggregate that describes its definitions", func() {
		agg := newCounter()

		Expect(agg.Name()).To(Equal("counter"))
		Expect(agg.EventTypes()).To(Equal([]string{"Added", "Opened"}))
		Expect(agg.CommandTypes()).To(Equal([]string{"Add", "Annotate", "Corrupt", "Nothing", "Open"}))
	})

	It("panics if the name is empty", func() {
		state := DefineState(schema.Struct[counter]())
		events := DefineEvents(state)
		commands := DefineCommands(state, events)

		Expect(func() {
			Build(Options[counter]{
				State:    state,
				Events:   events,
				Commands: commands,
			})
		}).To(PanicWith("aggregate name must not be empty"))
	})

	It("panics if the commands were defined against different events", func() {
		state := DefineState(schema.Struct[counter]())
		events := DefineEvents(state)
		commands := DefineCommands(state, DefineEvents(state))

		Expect(func() {
			Build(Options[counter]{
				Name:     "counter",
				State:    state,
				Events:   events,
				Commands: commands,
			})
		}).To(PanicWith("the counter aggregate's definitions were not defined against each other"))
	})
})

var _ = Describe("func DefineEvents()", func() {
	It("panics if an event type is defined more than once", func() {
		state := DefineState(schema.Struct[counter]())
		reduce := func(s counter, _ added, _ time.Time) counter { return s }

		Expect(func() {
			DefineEvents(
				state,
				Event("Added", schema.Struct[added](), reduce),
				Event("Added", schema.Struct[added](), reduce),
			)
		}).To(PanicWith("the Added event type is defined more than once"))
	})
})

var _ = Describe("func DefineCommands()", func() {
	It("panics if a command type is defined more than once", func() {
		state := DefineState(schema.Struct[counter]())
		events := DefineEvents(state)
		handle := func(context.Context, schema.Nil, *counter) ([]message.EventInput, error) {
			return nil, nil
		}

		Expect(func() {
			DefineCommands(
				state,
				events,
				Command("Nothing", schema.Null(), handle),
				Command("Nothing", schema.Null(), handle),
			)
		}).To(PanicWith("the Nothing command type is defined more than once"))
	})

	It("panics if the events were defined for a different state", func() {
		state := DefineState(schema.Struct[counter]())
		events := DefineEvents(DefineState(schema.Struct[counter]()))

		Expect(func() {
			DefineCommands(state, events)
		}).To(PanicWith("events were defined for a different state"))
	})
})

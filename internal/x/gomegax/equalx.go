package gomegax

import (
	"encoding/json"

	"github.com/dogmatiq/escf/message"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// EqualX is a more powerful and safer alternative to gomega.Equal() for
// comparing whether two values are semantically equal.
//
// If no options are given, nil and empty slices and maps are considered equal.
func EqualX(expected any, options ...cmp.Option) types.GomegaMatcher {
	if len(options) == 0 {
		options = append(options, cmpopts.EquateEmpty())
	}

	return &equalMatcher{
		expected: expected,
		options:  options,
	}
}

// EqualEvents returns a matcher that succeeds if the actual value is a slice
// of events equal to expected.
//
// Payloads are compared by their JSON representation, so an event read back
// from a store or a transport matches the event that was written.
func EqualEvents(expected ...message.Event) types.GomegaMatcher {
	return EqualX(
		expected,
		cmpopts.EquateEmpty(),
		cmp.Transformer("event", normalize),
	)
}

// EqualEvent returns a matcher that succeeds if the actual value is an event
// equal to expected. Payloads are compared as per EqualEvents().
func EqualEvent(expected message.Event) types.GomegaMatcher {
	return EqualX(
		expected,
		cmp.Transformer("event", normalize),
	)
}

// event is a message.Event with its payload replaced by its decoded JSON
// representation.
type event struct {
	ID            string
	Type          string
	Payload       any
	Timestamp     int64
	AggregateType string
	AggregateID   string
}

func normalize(ev message.Event) event {
	return event{
		ID:            ev.ID,
		Type:          ev.Type,
		Payload:       jsonValue(ev.Payload),
		Timestamp:     ev.Timestamp,
		AggregateType: ev.AggregateType,
		AggregateID:   ev.AggregateID,
	}
}

func jsonValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}

	return out
}

type equalMatcher struct {
	expected any
	options  cmp.Options
}

func (m *equalMatcher) Match(actual any) (success bool, err error) {
	return cmp.Equal(actual, m.expected, m.options), nil
}

func (m *equalMatcher) FailureMessage(actual any) (message string) {
	as, aok := actual.(string)
	es, eok := m.expected.(string)
	if aok && eok {
		return format.MessageWithDiff(as, "to equal", es)
	}

	return m.message(actual, "to equal")
}

func (m *equalMatcher) NegatedFailureMessage(actual any) (message string) {
	return m.message(actual, "not to equal")
}

func (m *equalMatcher) message(actual any, verb string) string {
	diff := cmp.Diff(actual, m.expected, m.options)
	return format.Message(actual, verb, m.expected) +
		"\n\nDiff:\n" + format.IndentString(diff, 1)
}

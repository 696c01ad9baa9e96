package message

import (
	"encoding/json"
	"time"
)

// Event is an immutable fact produced by an aggregate in response to a
// command.
type Event struct {
	// ID uniquely identifies the event across all aggregates.
	ID string `json:"id"`

	// Type is the event type name, as declared in the aggregate's event
	// definitions.
	Type string `json:"type"`

	// Payload is the event's data.
	//
	// Within the process that produced the event it is the value returned by
	// the command handler. Events decoded from JSON carry a json.RawMessage
	// instead. Use DecodePayload() to obtain a typed value in either case.
	Payload any `json:"payload"`

	// Timestamp is the time at which the event was produced, in milliseconds
	// since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// AggregateType is the name of the aggregate that produced the event.
	AggregateType string `json:"aggregateType"`

	// AggregateID is the ID of the aggregate instance that produced the event.
	AggregateID string `json:"aggregateId"`
}

// Time returns the event's timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// UnmarshalJSON decodes an event, retaining its payload as raw JSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	type event Event

	var v struct {
		event
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*e = Event(v.event)

	if len(v.Payload) != 0 && string(v.Payload) != "null" {
		e.Payload = v.Payload
	}

	return nil
}

// EventInput is an event returned by a command handler, before it is stamped
// with an ID, timestamp and the identity of the aggregate.
type EventInput struct {
	Type    string
	Payload any
}

// NewEvent returns an EventInput with the given type and payload.
func NewEvent(t string, payload any) EventInput {
	return EventInput{t, payload}
}

// Batch is an ordered sequence of events.
type Batch []Event

// Types returns the distinct event types within the batch, in order of first
// appearance.
func (b Batch) Types() []string {
	var types []string
	seen := map[string]struct{}{}

	for _, ev := range b {
		if _, ok := seen[ev.Type]; !ok {
			seen[ev.Type] = struct{}{}
			types = append(types, ev.Type)
		}
	}

	return types
}

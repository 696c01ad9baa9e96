package message_test

import (
	"encoding/json"
	"time"

	. "github.com/dogmatiq/escf/message"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Event", func() {
	ev := Event{
		ID:            "<event>",
		Type:          "UserCreated",
		Payload:       map[string]any{"name": "Alice"},
		Timestamp:     1700000000123,
		AggregateType: "user",
		AggregateID:   "<user>",
	}

	Describe("func Time()", func() {
		It("returns the timestamp with millisecond precision", func() {
			Expect(ev.Time()).To(Equal(time.UnixMilli(1700000000123)))
		})
	})

	Describe("func MarshalJSON()", func() {
		It("uses the documented field names", func() {
			data, err := json.Marshal(ev)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(data).To(MatchJSON(`{
				"id": "<event>",
				"type": "UserCreated",
				"payload": {"name": "Alice"},
				"timestamp": 1700000000123,
				"aggregateType": "user",
				"aggregateId": "<user>"
			}`))
		})
	})

	Describe("func UnmarshalJSON()", func() {
		It("retains the payload as raw JSON", func() {
			var out Event
			err := json.Unmarshal([]byte(`{"id":"<event>","type":"UserCreated","payload":{"name":"Alice"},"timestamp":5,"aggregateType":"user","aggregateId":"<user>"}`), &out)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(out.ID).To(Equal("<event>"))
			Expect(out.AggregateID).To(Equal("<user>"))
			Expect(out.Timestamp).To(BeEquivalentTo(5))
			Expect(out.Payload).To(BeAssignableToTypeOf(json.RawMessage{}))
			Expect(out.Payload).To(MatchJSON(`{"name":"Alice"}`))
		})

		It("leaves a null payload as nil", func() {
			var out Event
			err := json.Unmarshal([]byte(`{"type":"UserDeleted","payload":null}`), &out)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(out.Payload).To(BeNil())
		})
	})
})

var _ = Describe("type Batch", func() {
	Describe("func Types()", func() {
		It("returns the distinct types in order of first appearance", func() {
			b := Batch{
				{Type: "B"},
				{Type: "A"},
				{Type: "B"},
			}

			Expect(b.Types()).To(Equal([]string{"B", "A"}))
		})
	})
})

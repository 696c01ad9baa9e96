package rpc_test

import (
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/dogmatiq/escf/rpc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type RequestError", func() {
	Describe("func New()", func() {
		It("uses the default status", func() {
			Expect(New("Already created").Status).To(Equal(400))
		})
	})

	Describe("func Error()", func() {
		It("renders the prefixed JSON representation", func() {
			err := WithStatus(419, "Invalid session")
			Expect(err.Error()).To(Equal(`RequestError: {"message":"Invalid session","status":419}`))
		})

		It("includes extra fields", func() {
			err := New("Invalid password").With("field", "password")
			Expect(err.Error()).To(Equal(`RequestError: {"field":"password","message":"Invalid password","status":400}`))
		})

		It("does not allow extra fields to override the core fields", func() {
			err := New("<message>").With("status", 500)
			Expect(err.Error()).To(Equal(`RequestError: {"message":"<message>","status":400}`))
		})
	})

	Describe("func With()", func() {
		It("does not modify the original error", func() {
			orig := New("<message>")
			_ = orig.With("field", "value")
			Expect(orig.Extra).To(BeEmpty())
		})
	})

	Describe("func MarshalJSON()", func() {
		It("flattens extra fields into the object", func() {
			data, err := json.Marshal(New("<message>").With("field", "value"))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(data).To(MatchJSON(`{"message":"<message>","status":400,"field":"value"}`))
		})
	})
})

var _ = Describe("func Parse()", func() {
	It("reconstructs an error from its textual form", func() {
		orig := WithStatus(419, "Invalid session").With("sessionId", "<id>")

		e, err := Parse(orig.Error())
		Expect(err).ShouldNot(HaveOccurred())
		Expect(e).To(Equal(orig))
	})

	It("uses the default status if none is present", func() {
		e, err := Parse(`{"message":"<message>"}`)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(e.Status).To(Equal(DefaultStatus))
	})

	It("returns an error if the text is not valid JSON", func() {
		_, err := Parse("RequestError: <garbage>")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("func Cast()", func() {
	It("returns a RequestError from the error chain", func() {
		orig := New("Not found")
		e, ok := Cast(fmt.Errorf("<context>: %w", orig))
		Expect(ok).To(BeTrue())
		Expect(e).To(BeIdenticalTo(orig))
	})

	It("reconstructs a RequestError that was flattened to a string", func() {
		flat := errors.New("remote call failed: " + New("User Deleted").Error())
		e, ok := Cast(flat)
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(New("User Deleted")))
	})

	It("returns false for other errors", func() {
		_, ok := Cast(errors.New("<error>"))
		Expect(ok).To(BeFalse())

		_, ok = Cast(nil)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("func Is()", func() {
	It("returns true if the fields match", func() {
		err := fmt.Errorf("<context>: %s", New("Invalid password").With("attempts", 3))
		Expect(Is(err, New("Invalid password").With("attempts", 3))).To(BeTrue())
	})

	It("returns false if the message differs", func() {
		Expect(Is(New("Invalid password"), New("Not found"))).To(BeFalse())
	})

	It("returns false if the status differs", func() {
		Expect(Is(New("Invalid session"), WithStatus(419, "Invalid session"))).To(BeFalse())
	})

	It("returns false if an extra field is missing", func() {
		Expect(Is(New("<message>"), New("<message>").With("field", "value"))).To(BeFalse())
	})
})

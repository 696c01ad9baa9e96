// Package rpc defines the error shape that crosses process and transport
// boundaries between a system and its callers.
package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
)

// DefaultStatus is the status used by New() when no status is given.
const DefaultStatus = 400

// prefix precedes the JSON representation in the error's text.
const prefix = "RequestError: "

// RequestError is a business-rule failure reported to the caller of a command
// or projection method.
//
// Its textual form embeds a JSON object, allowing the error to be
// reconstructed after it has been flattened to a string, for example by a
// transport that only preserves error messages.
type RequestError struct {
	// Message is a human-readable description of the failure.
	Message string

	// Status is an HTTP-like status code describing the failure.
	Status int

	// Extra contains additional application-defined fields.
	Extra map[string]any
}

// New returns a RequestError with the given message and DefaultStatus.
func New(message string) *RequestError {
	return &RequestError{
		Message: message,
		Status:  DefaultStatus,
	}
}

// Newf returns a RequestError with a message formatted according to a format
// specifier.
func Newf(f string, v ...any) *RequestError {
	return New(fmt.Sprintf(f, v...))
}

// WithStatus returns a RequestError with the given status and message.
func WithStatus(status int, message string) *RequestError {
	return &RequestError{
		Message: message,
		Status:  status,
	}
}

// With returns a copy of e with an additional field.
func (e *RequestError) With(k string, v any) *RequestError {
	x := *e
	x.Extra = maps.Clone(e.Extra)

	if x.Extra == nil {
		x.Extra = map[string]any{}
	}

	x.Extra[k] = v

	return &x
}

func (e *RequestError) Error() string {
	data, err := encode(e)
	if err != nil {
		// Extra contains a value that can not be represented as JSON, so fall
		// back to the core fields.
		data, _ = encode(&RequestError{Message: e.Message, Status: e.Status})
	}

	return prefix + string(data)
}

// MarshalJSON returns the flattened JSON representation of e.
func (e *RequestError) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(e.Extra)+2)
	maps.Copy(fields, e.Extra)
	fields["message"] = e.Message
	fields["status"] = e.Status

	return encode(fields)
}

// UnmarshalJSON populates e from its flattened JSON representation.
func (e *RequestError) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = RequestError{Status: DefaultStatus}

	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &e.Message); err != nil {
			return fmt.Errorf("invalid message field: %w", err)
		}
		delete(fields, "message")
	}

	if raw, ok := fields["status"]; ok {
		if err := json.Unmarshal(raw, &e.Status); err != nil {
			return fmt.Errorf("invalid status field: %w", err)
		}
		delete(fields, "status")
	}

	for k, raw := range fields {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}

		if e.Extra == nil {
			e.Extra = map[string]any{}
		}

		e.Extra[k] = v
	}

	return nil
}

// Parse reconstructs a RequestError from its textual form.
//
// The "RequestError: " prefix is optional.
func Parse(s string) (*RequestError, error) {
	s = strings.TrimPrefix(s, prefix)

	e := &RequestError{}
	if err := json.Unmarshal([]byte(s), e); err != nil {
		return nil, fmt.Errorf("unable to parse request error: %w", err)
	}

	return e, nil
}

// Cast returns err as a RequestError.
//
// Any error in err's chain that is a RequestError is returned directly.
// Otherwise, if err's text contains the textual form of a RequestError, for
// example because it has been wrapped or transported as a string, it is
// reconstructed.
func Cast(err error) (*RequestError, bool) {
	if err == nil {
		return nil, false
	}

	var e *RequestError
	if errors.As(err, &e) {
		return e, true
	}

	_, s, ok := strings.Cut(err.Error(), prefix)
	if !ok {
		return nil, false
	}

	// The JSON object may be followed by unrelated text appended by
	// wrappers, so only the first JSON value is decoded.
	e = &RequestError{}
	if err := json.NewDecoder(strings.NewReader(s)).Decode(e); err != nil {
		return nil, false
	}

	return e, true
}

// Is returns true if err is a RequestError with the same message and status
// as target, and every field in target.Extra has an equal value in err.
func Is(err error, target *RequestError) bool {
	e, ok := Cast(err)
	if !ok {
		return false
	}

	if e.Message != target.Message || e.Status != target.Status {
		return false
	}

	for k, want := range target.Extra {
		got, ok := e.Extra[k]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}

	return true
}

// encode returns the JSON representation of v without escaping HTML
// characters, keeping the textual form of an error readable.
func encode(v any) ([]byte, error) {
	var w bytes.Buffer

	enc := json.NewEncoder(&w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(w.Bytes(), []byte("\n")), nil
}

// jsonEqual compares two values by their JSON representation, so that values
// decoded from JSON compare equal to the values they were encoded from.
func jsonEqual(a, b any) bool {
	x, err := json.Marshal(a)
	if err != nil {
		return false
	}

	y, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return string(x) == string(y)
}

// Package schema validates untyped values, such as command payloads decoded
// from JSON, against a Go type and a set of validation rules.
package schema

import (
	"encoding/json"
	"fmt"
)

// Schema is a validator that converts an untyped value to a T.
//
// Validate never panics. It returns either the typed value, or a
// *ValidationError describing why v does not conform to the schema.
type Schema[T any] interface {
	Validate(v any) (T, error)
}

// Func returns a schema that converts values to T and then calls fn to
// validate them.
//
// If fn returns an error that is not a *ValidationError, it is reported as a
// single issue without a path.
func Func[T any](fn func(T) error) Schema[T] {
	return funcSchema[T](fn)
}

type funcSchema[T any] func(T) error

func (fn funcSchema[T]) Validate(v any) (t T, err error) {
	defer recoverIssue(&err)

	t, err = decode[T](v)
	if err != nil {
		return t, err
	}

	if err := fn(t); err != nil {
		var zero T
		return zero, asValidationError(err)
	}

	return t, nil
}

// decode converts v to a T.
//
// Values that are already a T (or *T) are used as-is. Raw JSON is decoded
// directly. Any other value is converted via its JSON representation, which
// discards any object keys that T does not declare.
func decode[T any](v any) (T, error) {
	var (
		t    T
		data []byte
		err  error
	)

	switch x := v.(type) {
	case T:
		return x, nil
	case *T:
		if x != nil {
			return *x, nil
		}
		return t, newError(Issue{Rule: "required", Message: "value is required"})
	case nil:
		return t, newError(Issue{Rule: "required", Message: "value is required"})
	case json.RawMessage:
		data = x
	case []byte:
		data = x
	default:
		data, err = json.Marshal(v)
		if err != nil {
			return t, newError(Issue{Rule: "type", Message: err.Error()})
		}
	}

	if len(data) == 0 || string(data) == "null" {
		return t, newError(Issue{Rule: "required", Message: "value is required"})
	}

	if err := json.Unmarshal(data, &t); err != nil {
		return t, newError(Issue{
			Rule:    "type",
			Message: fmt.Sprintf("expected %T: %s", t, err),
		})
	}

	return t, nil
}

// recoverIssue converts a panic within a schema into a *ValidationError.
func recoverIssue(err *error) {
	if p := recover(); p != nil {
		*err = newError(Issue{
			Rule:    "schema",
			Message: fmt.Sprint(p),
		})
	}
}

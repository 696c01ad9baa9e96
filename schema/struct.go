package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
//
// It reports field paths using JSON field names rather than Go field names.
var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		default:
			return name
		}
	})

	return v
})

// Struct returns a schema that decodes values into the struct type T and
// validates them using its "validate" struct tags.
func Struct[T any]() Schema[T] {
	return structSchema[T]{}
}

type structSchema[T any] struct{}

func (structSchema[T]) Validate(v any) (t T, err error) {
	defer recoverIssue(&err)

	t, err = decode[T](v)
	if err != nil {
		return t, err
	}

	if err := validate().Struct(t); err != nil {
		var zero T
		return zero, fromValidator(err)
	}

	return t, nil
}

// Var returns a schema that converts values to T and validates them using
// the given validator tag, such as "required,email".
func Var[T any](tag string) Schema[T] {
	return varSchema[T]{tag}
}

type varSchema[T any] struct {
	tag string
}

func (s varSchema[T]) Validate(v any) (t T, err error) {
	defer recoverIssue(&err)

	t, err = decode[T](v)
	if err != nil {
		return t, err
	}

	if err := validate().Var(t, s.tag); err != nil {
		var zero T
		return zero, fromValidator(err)
	}

	return t, nil
}

// fromValidator converts an error produced by the validator package to a
// *ValidationError.
func fromValidator(err error) *ValidationError {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return newError(Issue{Rule: "schema", Message: err.Error()})
	}

	issues := make([]Issue, 0, len(fields))

	for _, f := range fields {
		rule := f.Tag()
		if f.Param() != "" {
			rule += "=" + f.Param()
		}

		issues = append(issues, Issue{
			Path:    fieldPath(f.Namespace()),
			Rule:    f.Tag(),
			Message: fmt.Sprintf("failed on the '%s' rule", rule),
		})
	}

	return newError(issues...)
}

// fieldPath strips the struct type name from a validator namespace.
func fieldPath(ns string) string {
	_, path, _ := strings.Cut(ns, ".")
	return path
}

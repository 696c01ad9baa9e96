package schema

import (
	"errors"
	"strings"
)

// Issue describes a single way in which a value fails to conform to a schema.
type Issue struct {
	// Path is the dot-separated path to the offending field, using JSON field
	// names. It is empty if the issue relates to the value as a whole.
	Path string `json:"path,omitempty"`

	// Rule is the name of the rule that was violated.
	Rule string `json:"rule"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}

	return i.Path + ": " + i.Message
}

// ValidationError is returned by a schema when a value does not conform to
// it.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func newError(issues ...Issue) *ValidationError {
	return &ValidationError{issues}
}

func (e *ValidationError) Error() string {
	var w strings.Builder
	w.WriteString("validation failed")

	for i, is := range e.Issues {
		if i == 0 {
			w.WriteString(": ")
		} else {
			w.WriteString("; ")
		}

		w.WriteString(is.String())
	}

	return w.String()
}

// asValidationError returns err as a *ValidationError, wrapping it if
// necessary.
func asValidationError(err error) *ValidationError {
	var v *ValidationError
	if errors.As(err, &v) {
		return v
	}

	return newError(Issue{Rule: "custom", Message: err.Error()})
}

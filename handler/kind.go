package handler

import "fmt"

// Kind is an enumeration of the kinds of model that consume events.
type Kind int

const (
	// ProjectionKind is the kind of a model that builds a read model and
	// exposes methods for querying it.
	ProjectionKind Kind = iota

	// ProcessKind is the kind of a model that performs side effects and
	// exposes no methods.
	ProcessKind
)

func (k Kind) String() string {
	switch k {
	case ProjectionKind:
		return "projection"
	case ProcessKind:
		return "process"
	default:
		panic(fmt.Sprintf("unrecognized model kind: %d", int(k)))
	}
}

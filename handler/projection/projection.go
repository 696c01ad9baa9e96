// Package projection builds read models from events and exposes methods for
// querying them.
package projection

import (
	"fmt"

	"github.com/dogmatiq/escf/handler"
)

// Projection is a model that maintains a read model and exposes methods of
// type M that operate on it.
type Projection[M any] struct {
	handler.Router

	methods M
}

// Methods returns the projection's externally callable methods.
func (p *Projection[M]) Methods() M {
	return p.methods
}

// New returns a constructor for a projection.
//
// Each time the projection is constructed, bindings is called with the
// environment to obtain the projection's collaborators (such as a database
// handle). handlers and methods are then built from those bindings.
func New[E, B, M any](
	name string,
	bindings func(env E) (B, error),
	handlers func(b B) handler.EventHandlers,
	methods func(b B) M,
) handler.Constructor[E] {
	if name == "" {
		panic("projection name must not be empty")
	}

	return func(env E) (handler.Model, error) {
		b, err := bindings(env)
		if err != nil {
			return nil, fmt.Errorf("unable to bind the %s projection: %w", name, err)
		}

		return &Projection[M]{
			Router: handler.Router{
				ModelName: name,
				ModelKind: handler.ProjectionKind,
				Handlers:  handlers(b),
			},
			methods: methods(b),
		}, nil
	}
}

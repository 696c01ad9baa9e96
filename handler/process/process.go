// Package process reacts to events by performing side effects.
package process

import (
	"fmt"

	"github.com/dogmatiq/escf/handler"
)

// New returns a constructor for a process.
//
// Each time the process is constructed, bindings is called with the
// environment to obtain the process's collaborators. effects builds the side
// effects that the event handlers may trigger from those bindings.
//
// Unlike a projection, a process exposes no methods.
func New[E, B, F any](
	name string,
	bindings func(env E) (B, error),
	effects func(b B) F,
	handlers func(f F) handler.EventHandlers,
) handler.Constructor[E] {
	if name == "" {
		panic("process name must not be empty")
	}

	return func(env E) (handler.Model, error) {
		b, err := bindings(env)
		if err != nil {
			return nil, fmt.Errorf("unable to bind the %s process: %w", name, err)
		}

		return &handler.Router{
			ModelName: name,
			ModelKind: handler.ProcessKind,
			Handlers:  handlers(effects(b)),
		}, nil
	}
}

package loggingx

import (
	"fmt"
	"strings"

	"github.com/dogmatiq/dodeca/logging"
)

// WithPrefix returns a logger that prepends a formatted prefix to every
// message written to target.
func WithPrefix(target logging.Logger, f string, v ...any) logging.Logger {
	p := fmt.Sprintf(f, v...)

	return &prefixed{
		Logger:  target,
		literal: p,
		escaped: strings.ReplaceAll(p, "%", "%%"),
	}
}

// prefixed is a logging.Logger that prefixes messages. IsDebug() is inherited
// from the embedded target.
type prefixed struct {
	logging.Logger

	literal string // for pre-formatted messages
	escaped string // for format specifiers
}

func (p *prefixed) Log(f string, v ...any) {
	p.Logger.Log(p.escaped+f, v...)
}

func (p *prefixed) LogString(s string) {
	p.Logger.LogString(p.literal + s)
}

func (p *prefixed) Debug(f string, v ...any) {
	p.Logger.Debug(p.escaped+f, v...)
}

func (p *prefixed) DebugString(s string) {
	p.Logger.DebugString(p.literal + s)
}

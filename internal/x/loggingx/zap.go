package loggingx

import (
	"fmt"

	"github.com/dogmatiq/dodeca/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap is a logging.Logger that writes to a zap logger.
//
// Log messages are written at the info level, debug messages at the debug
// level.
type Zap struct {
	Target *zap.Logger
}

var _ logging.Logger = (*Zap)(nil)

// NewZap builds a zap-backed logger.
//
// If development is true, zap's development configuration is used, which
// enables debug logging and human-readable output. Otherwise the production
// JSON configuration is used.
func NewZap(development bool) (*Zap, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("unable to build zap logger: %w", err)
	}

	return &Zap{l}, nil
}

// Log writes an application log message formatted according to a format
// specifier.
func (l *Zap) Log(f string, v ...interface{}) {
	l.Target.Info(fmt.Sprintf(f, v...))
}

// LogString writes a pre-formatted application log message.
func (l *Zap) LogString(s string) {
	l.Target.Info(s)
}

// Debug writes a debug log message formatted according to a format specifier.
func (l *Zap) Debug(f string, v ...interface{}) {
	if l.IsDebug() {
		l.Target.Debug(fmt.Sprintf(f, v...))
	}
}

// DebugString writes a pre-formatted debug log message.
func (l *Zap) DebugString(s string) {
	l.Target.Debug(s)
}

// IsDebug returns true if this logger will perform debug logging.
func (l *Zap) IsDebug() bool {
	return l.Target.Core().Enabled(zapcore.DebugLevel)
}

// Sync flushes any buffered log entries.
func (l *Zap) Sync() error {
	return l.Target.Sync()
}

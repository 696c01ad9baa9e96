package escf

import (
	"runtime"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/handler/aggregate"
	"github.com/dogmatiq/escf/handler/cache"
	"github.com/dogmatiq/escf/persistence"
	"github.com/dogmatiq/escf/persistence/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

var (
	// DefaultConcurrencyLimit is the default number of models that are
	// delivered to concurrently, across all commands executed by a system.
	//
	// It is overridden by the WithConcurrencyLimit() option.
	DefaultConcurrencyLimit = uint(runtime.GOMAXPROCS(0) * 2)

	// DefaultCacheTTL is the default minimum period of time that idle
	// aggregate instances are kept in memory.
	//
	// It is overridden by the WithCacheTTL() option.
	DefaultCacheTTL = cache.DefaultTTL

	// DefaultReplayBatchSize is the number of events loaded from the event
	// store at a time by System.Replay().
	DefaultReplayBatchSize = 100

	// DefaultLogger is the default target for log messages produced by the
	// system.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger

	// DefaultClock is the default function used to obtain the current time.
	//
	// It is overridden by the WithClock() option.
	DefaultClock = time.Now

	// DefaultIDGenerator is the default function used to generate aggregate
	// and event IDs.
	//
	// It is overridden by the WithIDGenerator() option.
	DefaultIDGenerator = uuid.NewString
)

// SystemOption configures the behavior of a system.
type SystemOption func(*systemOptions)

// WithStateStore returns a system option that sets the store used to persist
// aggregate state.
//
// If this option is omitted or s is nil, an in-memory store is used. It is
// ignored if WithLocator() is also used.
func WithStateStore(s persistence.StateStore) SystemOption {
	return func(opts *systemOptions) {
		opts.StateStore = s
	}
}

// WithLocator returns a system option that sets the locator used to find the
// actor that owns each aggregate instance.
//
// If this option is omitted or l is nil, the aggregates are hosted in this
// process by an aggregate.LocalLocator.
func WithLocator(l aggregate.Locator) SystemOption {
	return func(opts *systemOptions) {
		opts.Locator = l
	}
}

// WithLogger returns a system option that sets the target for log messages
// produced by the system.
//
// If this option is omitted or l is nil DefaultLogger is used.
func WithLogger(l logging.Logger) SystemOption {
	return func(opts *systemOptions) {
		opts.Logger = l
	}
}

// WithClock returns a system option that sets the function used to obtain the
// current time when timestamping events.
//
// If this option is omitted or fn is nil DefaultClock is used.
func WithClock(fn func() time.Time) SystemOption {
	return func(opts *systemOptions) {
		opts.Clock = fn
	}
}

// WithIDGenerator returns a system option that sets the function used to
// generate new aggregate and event IDs.
//
// If this option is omitted or fn is nil DefaultIDGenerator is used.
func WithIDGenerator(fn func() string) SystemOption {
	return func(opts *systemOptions) {
		opts.NewID = fn
	}
}

// WithConcurrencyLimit returns a system option that limits the number of
// models that are delivered to at the same time.
//
// If this option is omitted or n is zero DefaultConcurrencyLimit is used.
func WithConcurrencyLimit(n uint) SystemOption {
	return func(opts *systemOptions) {
		opts.ConcurrencyLimit = n
	}
}

// WithCacheTTL returns a system option that sets the minimum period of time
// that idle aggregate instances are kept in memory.
//
// If this option is omitted or d is zero DefaultCacheTTL is used.
func WithCacheTTL(d time.Duration) SystemOption {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *systemOptions) {
		opts.CacheTTL = d
	}
}

// WithTracerProvider returns a system option that sets the OpenTelemetry
// tracer provider used to trace command execution and event delivery.
//
// If this option is omitted or tp is nil the global tracer provider is used.
func WithTracerProvider(tp trace.TracerProvider) SystemOption {
	return func(opts *systemOptions) {
		opts.TracerProvider = tp
	}
}

// WithMetricsRegisterer returns a system option that sets the Prometheus
// registerer with which the system's metrics are registered.
//
// If this option is omitted or r is nil the metrics are recorded but not
// registered.
func WithMetricsRegisterer(r prometheus.Registerer) SystemOption {
	return func(opts *systemOptions) {
		opts.MetricsRegisterer = r
	}
}

// systemOptions is a container for a fully-resolved set of system options.
type systemOptions struct {
	StateStore        persistence.StateStore
	Locator           aggregate.Locator
	Logger            logging.Logger
	Clock             func() time.Time
	NewID             func() string
	ConcurrencyLimit  uint
	CacheTTL          time.Duration
	TracerProvider    trace.TracerProvider
	MetricsRegisterer prometheus.Registerer
}

// resolveSystemOptions returns a fully-populated set of system options built
// from the given set of option functions.
func resolveSystemOptions(
	aggregates []aggregate.Aggregate,
	options ...SystemOption,
) *systemOptions {
	opts := &systemOptions{}

	for _, o := range options {
		o(opts)
	}

	if opts.StateStore == nil {
		opts.StateStore = &memory.StateStore{}
	}

	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	if opts.Clock == nil {
		opts.Clock = DefaultClock
	}

	if opts.NewID == nil {
		opts.NewID = DefaultIDGenerator
	}

	if opts.ConcurrencyLimit == 0 {
		opts.ConcurrencyLimit = DefaultConcurrencyLimit
	}

	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	if opts.Locator == nil {
		opts.Locator = aggregate.NewLocalLocator(
			aggregate.Dependencies{
				StateStore: opts.StateStore,
				Clock:      opts.Clock,
				NewID:      opts.NewID,
				CacheTTL:   opts.CacheTTL,
				Logger:     opts.Logger,
			},
			aggregates...,
		)
	}

	return opts
}

// Package metrics records Prometheus metrics about command execution and event
// delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics is a set of Prometheus collectors.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Events          *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
}

// New returns a new set of collectors, registered with reg.
//
// If reg is nil the collectors are not registered, but remain usable.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escf_commands_total",
				Help: "Total number of commands executed, by aggregate, command type and result.",
			},
			[]string{"aggregate", "command", "result"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escf_command_duration_seconds",
				Help:    "Time taken to execute a command and deliver its events, in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"aggregate", "command"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escf_events_total",
				Help: "Total number of events produced, by aggregate and event type.",
			},
			[]string{"aggregate", "event"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escf_deliveries_total",
				Help: "Total number of event batches delivered to models, by model and result.",
			},
			[]string{"model", "result"},
		),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{
		m.Commands,
		m.CommandDuration,
		m.Events,
		m.Deliveries,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveCommand records the execution of a command.
func (m *Metrics) ObserveCommand(aggregate, command, result string, d time.Duration) {
	m.Commands.WithLabelValues(aggregate, command, result).Inc()
	m.CommandDuration.WithLabelValues(aggregate, command).Observe(d.Seconds())
}

// ObserveEvent records the production of an event.
func (m *Metrics) ObserveEvent(aggregate, event string) {
	m.Events.WithLabelValues(aggregate, event).Inc()
}

// ObserveDelivery records the delivery of a batch of events to a model.
func (m *Metrics) ObserveDelivery(model string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}

	m.Deliveries.WithLabelValues(model, result).Inc()
}

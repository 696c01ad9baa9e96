package mlog

import (
	"fmt"
	"io"

	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/iago/must"
)

// Icons that identify the subject of a log line.
const (
	// MessageIDIcon precedes an event ID.
	MessageIDIcon Icon = "="

	// InstanceIDIcon precedes an aggregate instance ID. The event or command
	// is a member of the instance's set of messages.
	InstanceIDIcon Icon = "⋲"

	// AggregateIcon marks a line about an aggregate.
	AggregateIcon Icon = "∴"

	// ProcessIcon marks a line about a process.
	ProcessIcon Icon = "≡"

	// ProjectionIcon marks a line about a projection, the "sum" of the events
	// it has seen.
	ProjectionIcon Icon = "Σ"

	// SystemIcon marks a line about the runtime itself.
	SystemIcon Icon = "⚙"
)

// Icons that identify what happened.
const (
	// ConsumeIcon marks an inbound command or event.
	ConsumeIcon Icon = "▼"

	// ConsumeErrorIcon is the hollow form of ConsumeIcon, used when an
	// inbound message could not be handled.
	ConsumeErrorIcon Icon = "▽"

	// ProduceIcon marks an outbound event.
	ProduceIcon Icon = "▲"

	// RetryIcon marks a message that is being redelivered.
	RetryIcon Icon = "↻"

	// ErrorIcon marks a failure.
	ErrorIcon Icon = "✖"

	// SeparatorIcon separates unrelated text within a line.
	SeparatorIcon Icon = "●"
)

// Icon is a unicode symbol used as an icon in log messages.
type Icon string

func (i Icon) String() string {
	return string(i)
}

// WriteTo writes the icon to w. The zero-value renders as a single space so
// that columns of icons remain aligned.
func (i Icon) WriteTo(w io.Writer) (int64, error) {
	s := string(i)
	if s == "" {
		s = " "
	}

	n, err := io.WriteString(w, s)
	return int64(n), err
}

// WithLabel returns the icon followed by a formatted label.
func (i Icon) WithLabel(f string, v ...any) IconWithLabel {
	label := fmt.Sprintf(f, v...)
	if label == "" {
		label = "-"
	}

	return IconWithLabel{i, label}
}

// WithID returns the icon followed by an ID, formatted by FormatID().
func (i Icon) WithID(id string) IconWithLabel {
	return i.WithLabel("%s", FormatID(id))
}

// IconWithLabel is an icon and its associated text label.
type IconWithLabel struct {
	Icon  Icon
	Label string
}

func (i IconWithLabel) String() string {
	return i.Icon.String() + " " + i.Label
}

// WriteTo writes the icon and its label to w.
func (i IconWithLabel) WriteTo(w io.Writer) (_ int64, err error) {
	defer must.Recover(&err)

	n := must.WriteTo(w, i.Icon)
	n += must.Write(w, space1)
	n += must.WriteString(w, i.Label)

	return int64(n), nil
}

// KindIcon returns the icon for the given kind of model.
func KindIcon(k handler.Kind) Icon {
	if k == handler.ProcessKind {
		return ProcessIcon
	}

	return ProjectionIcon
}

// FormatID shortens an event or instance ID for display.
//
// UUIDs are reduced to their first 8 characters. Other IDs are shown in full.
func FormatID(id string) string {
	if len(id) == 36 && id[8] == '-' {
		return id[:8]
	}

	return id
}

package aggregate

import "fmt"

// CommandNotFoundError indicates that an aggregate does not accept a command
// type.
type CommandNotFoundError struct {
	Aggregate string
	Command   string
}

func (e CommandNotFoundError) Error() string {
	return fmt.Sprintf(
		"the %s aggregate does not accept %s commands",
		e.Aggregate,
		e.Command,
	)
}

// CommandValidationError indicates that a command payload does not conform
// to the command's schema.
//
// No events are produced and the aggregate's state is unchanged.
type CommandValidationError struct {
	Aggregate string
	Command   string
	Cause     error
}

func (e CommandValidationError) Error() string {
	return fmt.Sprintf(
		"invalid %s.%s command: %s",
		e.Aggregate,
		e.Command,
		e.Cause,
	)
}

func (e CommandValidationError) Unwrap() error {
	return e.Cause
}

// EventValidationError indicates that the payload of an event produced by a
// command handler does not conform to the event's schema.
//
// The aggregate's state is unchanged.
type EventValidationError struct {
	Aggregate string
	Event     string
	Cause     error
}

func (e EventValidationError) Error() string {
	return fmt.Sprintf(
		"invalid %s.%s event: %s",
		e.Aggregate,
		e.Event,
		e.Cause,
	)
}

func (e EventValidationError) Unwrap() error {
	return e.Cause
}

// StateValidationError indicates that the state produced by applying an
// event does not conform to the aggregate's state schema.
//
// The aggregate's state is unchanged.
type StateValidationError struct {
	Aggregate string
	Event     string
	Cause     error
}

func (e StateValidationError) Error() string {
	return fmt.Sprintf(
		"invalid %s state after applying %s event: %s",
		e.Aggregate,
		e.Event,
		e.Cause,
	)
}

func (e StateValidationError) Unwrap() error {
	return e.Cause
}

// UnknownAggregateError indicates that a locator has no aggregate with the
// given name.
type UnknownAggregateError struct {
	Aggregate string
}

func (e UnknownAggregateError) Error() string {
	return fmt.Sprintf("there is no %s aggregate", e.Aggregate)
}

package persistence

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned when performing an operation on a store that has
// already been closed.
var ErrStoreClosed = errors.New("store is closed")

// UnknownEventError is returned by EventStore.GetEvents() if the query's
// starting event does not exist.
type UnknownEventError struct {
	EventID string
}

func (e UnknownEventError) Error() string {
	return fmt.Sprintf("event %s does not exist", e.EventID)
}

// DuplicateEventError is returned by EventStore.AddEvent() if an event with
// the same ID already exists.
type DuplicateEventError struct {
	EventID string
}

func (e DuplicateEventError) Error() string {
	return fmt.Sprintf("event %s already exists", e.EventID)
}

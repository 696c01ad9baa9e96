package escf

import "fmt"

// UnknownProjectionError indicates that a system has no projection with the
// given name.
type UnknownProjectionError struct {
	Name string
}

func (e UnknownProjectionError) Error() string {
	return fmt.Sprintf("there is no %s projection", e.Name)
}

// UnknownModelError indicates that a system has no projection or process with
// the given name.
type UnknownModelError struct {
	Name string
}

func (e UnknownModelError) Error() string {
	return fmt.Sprintf("there is no %s projection or process", e.Name)
}

// DeliveryError indicates that events could not be delivered to a model.
//
// By the time a DeliveryError is returned the aggregate's state has already
// been persisted and the events have been appended to the event store.
type DeliveryError struct {
	// Model is the name of the model.
	Model string

	// Cause is the error that occurred. It is a *handler.BatchError if the
	// model failed to handle one of the events.
	Cause error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf(
		"unable to deliver events to %s: %s",
		e.Model,
		e.Cause,
	)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

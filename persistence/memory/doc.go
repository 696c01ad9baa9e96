// Package memory provides in-memory implementations of the persistence
// interfaces.
//
// The stores are safe for concurrent use. Their contents are lost when the
// process ends, making them suitable for tests and ephemeral systems.
package memory

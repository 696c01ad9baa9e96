// Package fixtures is a set of test fixtures and mocks for the various escf
// interfaces.
package fixtures

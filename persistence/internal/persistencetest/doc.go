// Package persistencetest contains a set of tests that are shared by every
// implementation of the persistence interfaces.
package persistencetest

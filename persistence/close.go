package persistence

import (
	"io"

	"go.uber.org/multierr"
)

// CloserSet is a set of stores (or other resources) that are closed together.
type CloserSet []io.Closer

// Add adds c to the set.
func (s *CloserSet) Add(c io.Closer) {
	*s = append(*s, c)
}

// Close closes every member of the set, in reverse order of addition.
//
// Every member is closed even if closing an earlier member fails. The errors
// from each member are combined.
func (s *CloserSet) Close() error {
	var err error

	for i := len(*s) - 1; i >= 0; i-- {
		err = multierr.Append(err, (*s)[i].Close())
	}

	*s = nil

	return err
}

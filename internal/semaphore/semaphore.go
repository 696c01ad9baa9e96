// Package semaphore limits the number of event deliveries that are performed
// concurrently.
package semaphore

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore limits the number of models that can be delivered to
// concurrently.
//
// The zero value imposes no limit.
type Semaphore struct {
	n   int
	sem *semaphore.Weighted
}

// New returns a semaphore that allows n concurrent deliveries.
//
// If n is zero the semaphore imposes no limit.
func New(n int) Semaphore {
	if n <= 0 {
		return Semaphore{}
	}

	return Semaphore{
		n,
		semaphore.NewWeighted(int64(n)),
	}
}

// Limit returns the number of concurrent deliveries allowed.
//
// It returns 0 if there is no limit.
func (s *Semaphore) Limit() int {
	return s.n
}

// Acquire blocks until the caller may begin a delivery, or until ctx is
// canceled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s.sem == nil {
		return ctx.Err()
	}

	return s.sem.Acquire(ctx, 1)
}

// Release signals that a delivery has completed.
func (s *Semaphore) Release() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

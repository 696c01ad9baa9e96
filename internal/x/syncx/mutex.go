package syncx

import (
	"context"
	"sync"
)

// Mutex is a context-aware mutual exclusion lock.
//
// The zero value is an unlocked mutex.
type Mutex struct {
	once  sync.Once
	guard chan struct{} // buffered guard, write = lock, read = unlock
}

// Lock acquires an exclusive lock on the mutex.
//
// It blocks until the mutex is acquired, or ctx is canceled.
func (m *Mutex) Lock(ctx context.Context) error {
	if ctx.Err() != nil {
		// Bail before competing for the guard, otherwise select may choose
		// the lock even though ctx is already done.
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.ch() <- struct{}{}:
		return nil
	}
}

// TryLock acquires the mutex without blocking.
//
// It returns false if the mutex is already locked.
func (m *Mutex) TryLock() bool {
	select {
	case m.ch() <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the mutex.
//
// It panics if the mutex is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.ch():
	default:
		panic("mutex is not locked")
	}
}

func (m *Mutex) ch() chan struct{} {
	m.once.Do(func() {
		m.guard = make(chan struct{}, 1)
	})

	return m.guard
}

package syncx

import (
	"context"
	"sync"
)

// UnlockFunc is a function used to unlock a previously locked mutex.
type UnlockFunc func()

// MutexNamespace is a "namespace" of named, context-aware mutexes.
//
// Mutexes are created on demand and discarded once no caller holds or is
// waiting for them.
type MutexNamespace struct {
	m       sync.Mutex
	mutexes map[string]*namedMutex
}

type namedMutex struct {
	Mutex
	refs int // number of pending or successful Lock() calls, guarded by ns.m
}

// Lock acquires an exclusive lock on the mutex with the given name.
//
// It returns an unlock function which must be called to unlock the mutex. The
// unlock function is idempotent.
//
// If the mutex is already locked, Lock() blocks until it is unlocked, or ctx is
// canceled.
func (ns *MutexNamespace) Lock(ctx context.Context, n string) (UnlockFunc, error) {
	m := ns.ref(n)

	if err := m.Lock(ctx); err != nil {
		ns.unref(n, m)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			ns.unref(n, m)
		})
	}, nil
}

// ref returns the mutex with the given name, creating it if necessary, and
// increments its reference count.
func (ns *MutexNamespace) ref(n string) *namedMutex {
	ns.m.Lock()
	defer ns.m.Unlock()

	m, ok := ns.mutexes[n]
	if !ok {
		if ns.mutexes == nil {
			ns.mutexes = map[string]*namedMutex{}
		}

		m = &namedMutex{}
		ns.mutexes[n] = m
	}

	m.refs++

	return m
}

// unref decrements the reference count of m, removing it from the namespace
// when it reaches zero.
func (ns *MutexNamespace) unref(n string, m *namedMutex) {
	ns.m.Lock()
	defer ns.m.Unlock()

	m.refs--

	if m.refs == 0 {
		delete(ns.mutexes, n)
	}
}

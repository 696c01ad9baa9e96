package cache

import (
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/internal/x/syncx"
)

// Record is an entry in the cache.
//
// Its exported fields may only be accessed while the record is acquired.
type Record[T any] struct {
	key   string
	cache *Cache[T]

	m     syncx.Mutex
	state state
	keep  bool

	// Instance is the cached value.
	Instance T

	// Loaded is true once Instance has been populated by a previous holder of
	// the record.
	Loaded bool
}

// Key returns the key of the record.
func (r *Record[T]) Key() string {
	return r.key
}

// KeepAlive resets the TTL for this record, and instructs the cache to keep
// this record when it is released.
//
// It must be called each time the record is acquired, otherwise the record is
// removed when it is released. A holder that fails part-way through modifying
// r.Instance simply does not call KeepAlive(), so the next holder starts from
// a fresh record.
func (r *Record[T]) KeepAlive() {
	r.keep = true
	r.state = active
}

// Release unlocks this record, allowing the key to be acquired by other
// callers.
//
// If KeepAlive() has not been called since the record was acquired, the record
// is removed from the cache.
func (r *Record[T]) Release() {
	if r.keep {
		r.keep = false // for the next acquirer
	} else {
		r.remove()
	}

	r.m.Unlock()
}

// remove removes r from the cache.
func (r *Record[T]) remove() {
	r.state = removed
	r.cache.records.CompareAndDelete(r.key, r)

	logging.Debug(r.cache.Logger, "cache record removed: %s (%p)", r.key, r)
}

// evict marks the record as idle, or removes it if it's already idle.
func (r *Record[T]) evict() {
	if !r.m.TryLock() {
		return
	}
	defer r.m.Unlock()

	switch r.state {
	case active:
		r.state = idle
	case idle:
		r.remove()
	}
}

// state is an enumeration that describes the record's state in the cache.
type state int

const (
	active  state = iota // the record is in the cache, it may be locked or unlocked
	idle                 // the record will be removed on the next eviction cycle
	removed              // the record has been removed from the cache, and is invalid
)

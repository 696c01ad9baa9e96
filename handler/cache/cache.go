// Package cache is an in-memory cache of aggregate instances that serializes
// access to each instance.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
)

// DefaultTTL is the default *minimum* period of time to keep cache records in
// memory after they were last used.
const DefaultTTL = 1 * time.Hour

// Cache is an in-memory cache of instances of type T, keyed by instance ID.
//
// At most one caller may hold the record for a given key at any time.
type Cache[T any] struct {
	// TTL is the *minimum* period of time to keep cache records in memory after
	// they were last used. If it is non-positive, DefaultTTL is used.
	TTL time.Duration

	// Logger is the target for log messages about modifications to the cache.
	Logger logging.Logger

	records sync.Map // map[string]*Record[T]
}

// Acquire locks and returns the cache record with the given key.
//
// If the record is already held by another caller it blocks until the record
// is released or ctx is canceled.
func (c *Cache[T]) Acquire(ctx context.Context, key string) (*Record[T], error) {
	for {
		rec := &Record[T]{
			key:   key,
			cache: c,
		}

		if x, loaded := c.records.LoadOrStore(key, rec); loaded {
			rec = x.(*Record[T])
		} else {
			logging.Debug(c.Logger, "cache record added: %s (%p)", key, rec)
		}

		if err := rec.m.Lock(ctx); err != nil {
			return nil, err
		}

		if rec.state != removed {
			return rec, nil
		}

		// The record was removed while we waited for it. Unlock it so that any
		// other waiters also notice, then start again with a fresh record.
		rec.m.Unlock()
	}
}

// Len returns the number of records in the cache.
func (c *Cache[T]) Len() int {
	n := 0

	c.records.Range(
		func(_, _ any) bool {
			n++
			return true
		},
	)

	return n
}

// Run evicts idle records from the cache until ctx is canceled.
//
// A record is evicted if it has not been acquired for at least one full TTL
// period.
func (c *Cache[T]) Run(ctx context.Context) error {
	for {
		if err := linger.Sleep(ctx, c.TTL, DefaultTTL); err != nil {
			return err
		}

		c.evictIdle()
	}
}

// evictIdle marks active records as idle, and removes records that were
// already idle.
func (c *Cache[T]) evictIdle() {
	c.records.Range(
		func(_, x any) bool {
			x.(*Record[T]).evict()
			return true
		},
	)
}

// Package boltpersistence provides BoltDB implementations of the persistence
// interfaces.
package boltpersistence

import (
	"context"
	"os"
	"sync"

	"github.com/dogmatiq/escf/internal/x/bboltx"
	"github.com/dogmatiq/escf/persistence"
	"go.etcd.io/bbolt"
)

// Store is an implementation of persistence.StateStore and
// persistence.EventStore that persists data in a BoltDB database.
type Store struct {
	m     sync.RWMutex
	db    *bbolt.DB
	close func(*bbolt.DB) error
}

var (
	_ persistence.StateStore = (*Store)(nil)
	_ persistence.EventStore = (*Store)(nil)
)

// New returns a store that uses an existing open database.
//
// Closing the store does not close db.
func New(db *bbolt.DB) *Store {
	return &Store{
		db: db,
		close: func(*bbolt.DB) error {
			// Don't actually close the database, since we didn't open it.
			return nil
		},
	}
}

// Open returns a store that persists data in the BoltDB database file at the
// given path, creating it if necessary.
//
// If mode is zero, 0600 (owner read/write only) is used. If opts is nil,
// bbolt.DefaultOptions is used. Open fails if the file remains locked by
// another process until ctx is canceled.
func Open(
	ctx context.Context,
	path string,
	mode os.FileMode,
	opts *bbolt.Options,
) (*Store, error) {
	db, err := bboltx.Open(ctx, path, mode, opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:    db,
		close: (*bbolt.DB).Close,
	}, nil
}

// Close closes the store.
//
// Operations performed on a closed store return persistence.ErrStoreClosed.
func (s *Store) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.db == nil {
		return persistence.ErrStoreClosed
	}

	db := s.db
	s.db = nil

	return s.close(db)
}

// view executes fn within a read-only transaction.
func (s *Store) view(fn func(tx *bbolt.Tx)) (err error) {
	defer bboltx.Recover(&err)

	s.m.RLock()
	defer s.m.RUnlock()

	if s.db == nil {
		return persistence.ErrStoreClosed
	}

	bboltx.View(s.db, fn)

	return nil
}

// update executes fn within a read-write transaction.
func (s *Store) update(fn func(tx *bbolt.Tx)) (err error) {
	defer bboltx.Recover(&err)

	s.m.RLock()
	defer s.m.RUnlock()

	if s.db == nil {
		return persistence.ErrStoreClosed
	}

	bboltx.Update(s.db, fn)

	return nil
}

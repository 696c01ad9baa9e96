// Package sqlpersistence provides SQL implementations of the persistence
// interfaces.
package sqlpersistence

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
)

var (
	// DefaultMaxIdleConns is the default maximum number of idle connections
	// allowed in the database pool.
	DefaultMaxIdleConns = runtime.GOMAXPROCS(0)

	// DefaultMaxOpenConns is the default maximum number of open connections
	// allowed in the database pool.
	DefaultMaxOpenConns = DefaultMaxIdleConns * 10

	// DefaultMaxConnLifetime is the default maximum lifetime of database
	// connections.
	DefaultMaxConnLifetime = 10 * time.Minute
)

// Store is an implementation of persistence.StateStore and
// persistence.EventStore that persists data in an SQL database.
type Store struct {
	db     *sql.DB
	driver Driver
	close  func() error
}

var (
	_ persistence.StateStore = (*Store)(nil)
	_ persistence.EventStore = (*Store)(nil)
)

// New returns a store that uses an existing open database pool.
//
// If d is nil, the driver is chosen automatically from one of the built-in
// drivers. Closing the store does not close db.
func New(ctx context.Context, db *sql.DB, d Driver) (*Store, error) {
	if d == nil {
		var err error
		d, err = SelectDriver(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	return &Store{
		db:     db,
		driver: d,
		close: func() error {
			// Don't actually close the database, since we didn't open it.
			return nil
		},
	}, nil
}

// Open returns a store that opens a database pool using the given database/sql
// driver name and DSN.
//
// The driver's schema is created if it does not already exist.
func Open(ctx context.Context, driverName, dsn string, d Driver) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetConnMaxLifetime(DefaultMaxConnLifetime)

	s, err := New(ctx, db, d)
	if err != nil {
		// Ignore error from Close() and instead report the causal error.
		db.Close() // nolint:errcheck
		return nil, err
	}

	if err := s.driver.CreateSchema(ctx, db); err != nil {
		db.Close() // nolint:errcheck
		return nil, err
	}

	s.close = db.Close

	return s, nil
}

// DB returns the underlying database pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the store.
func (s *Store) Close() error {
	return s.close()
}

// LoadState returns the state of the instance identified by k.
func (s *Store) LoadState(
	ctx context.Context,
	k persistence.StateKey,
) ([]byte, bool, error) {
	return s.driver.SelectState(ctx, s.db, k)
}

// SaveState replaces the state of the instance identified by k.
func (s *Store) SaveState(
	ctx context.Context,
	k persistence.StateKey,
	data []byte,
) error {
	if data == nil {
		data = []byte{}
	}

	return s.driver.UpsertState(ctx, s.db, k, data)
}

// AddEvent appends an event to the store.
func (s *Store) AddEvent(ctx context.Context, ev message.Event) error {
	data, err := persistence.MarshalEvent(ev)
	if err != nil {
		return err
	}

	ok, err := s.driver.InsertEvent(ctx, s.db, ev, data)
	if err != nil {
		return err
	}

	if !ok {
		return persistence.DuplicateEventError{EventID: ev.ID}
	}

	return nil
}

// GetEvents returns the events that match q.
func (s *Store) GetEvents(
	ctx context.Context,
	q persistence.EventQuery,
) ([]message.Event, error) {
	var o int64

	if q.FromEventID != "" {
		var (
			ok  bool
			err error
		)

		o, ok, err = s.driver.SelectEventOffset(ctx, s.db, q.FromEventID)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, persistence.UnknownEventError{EventID: q.FromEventID}
		}
	}

	rows, err := s.driver.SelectEvents(ctx, s.db, o, q.AggregateID, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []message.Event

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		ev, err := persistence.UnmarshalEvent(data)
		if err != nil {
			return nil, err
		}

		result = append(result, ev)
	}

	return result, rows.Err()
}

// GetAggregateEvents returns all of the events produced by a single aggregate
// instance.
func (s *Store) GetAggregateEvents(
	ctx context.Context,
	id string,
) ([]message.Event, error) {
	return s.GetEvents(ctx, persistence.EventQuery{AggregateID: id})
}

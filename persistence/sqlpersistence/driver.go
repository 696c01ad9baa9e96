package sqlpersistence

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/message"
	"github.com/dogmatiq/escf/persistence"
)

// Driver is used to interface with the underlying SQL database.
type Driver interface {
	// IsCompatibleWith returns nil if this driver can be used with db.
	IsCompatibleWith(ctx context.Context, db *sql.DB) error

	// CreateSchema creates any SQL schema elements required by the driver.
	CreateSchema(ctx context.Context, db *sql.DB) error

	// DropSchema removes any SQL schema elements created by CreateSchema().
	DropSchema(ctx context.Context, db *sql.DB) error

	// SelectState selects the state data of an aggregate instance.
	SelectState(
		ctx context.Context,
		db *sql.DB,
		k persistence.StateKey,
	) ([]byte, bool, error)

	// UpsertState inserts or replaces the state data of an aggregate
	// instance.
	UpsertState(
		ctx context.Context,
		db *sql.DB,
		k persistence.StateKey,
		data []byte,
	) error

	// InsertEvent inserts an event.
	//
	// data is the event marshaled using persistence.MarshalEvent(). It returns
	// false if an event with the same ID already exists.
	InsertEvent(
		ctx context.Context,
		db *sql.DB,
		ev message.Event,
		data []byte,
	) (bool, error)

	// SelectEventOffset selects the offset of the event with the given ID.
	SelectEventOffset(
		ctx context.Context,
		db *sql.DB,
		id string,
	) (int64, bool, error)

	// SelectEvents selects the data of events with offsets greater than or
	// equal to o, in offset order.
	//
	// If id is non-empty only events produced by that aggregate instance are
	// selected. If limit is positive, at most limit rows are selected.
	SelectEvents(
		ctx context.Context,
		db *sql.DB,
		o int64,
		id string,
		limit int,
	) (*sql.Rows, error)
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/internal/x/sqlx"
	"github.com/dogmatiq/escf/message"
)

// InsertEvent inserts an event.
//
// It returns false if an event with the same ID already exists.
func (driver) InsertEvent(
	ctx context.Context,
	db *sql.DB,
	ev message.Event,
	data []byte,
) (_ bool, err error) {
	defer sqlx.Recover(&err)

	return sqlx.ExecRow(
		ctx,
		db,
		`INSERT INTO escf_event (
			event_id,
			event_type,
			aggregate_type,
			aggregate_id,
			created_at,
			data
		) VALUES (
			?, ?, ?, ?, ?, ?
		) ON CONFLICT (event_id) DO NOTHING`,
		ev.ID,
		ev.Type,
		ev.AggregateType,
		ev.AggregateID,
		ev.Timestamp,
		data,
	), nil
}

// SelectEventOffset selects the offset of the event with the given ID.
func (driver) SelectEventOffset(
	ctx context.Context,
	db *sql.DB,
	id string,
) (o int64, ok bool, err error) {
	defer sqlx.Recover(&err)

	ok = sqlx.TryQueryRow(
		ctx,
		db,
		`SELECT event_offset
		FROM escf_event
		WHERE event_id = ?`,
		[]interface{}{id},
		&o,
	)

	return o, ok, nil
}

// SelectEvents selects the data of events with offsets greater than or equal
// to o, in offset order.
func (driver) SelectEvents(
	ctx context.Context,
	db *sql.DB,
	o int64,
	id string,
	limit int,
) (*sql.Rows, error) {
	if limit <= 0 {
		// A negative limit means "no limit" to SQLite.
		limit = -1
	}

	if id == "" {
		return db.QueryContext(
			ctx,
			`SELECT data
			FROM escf_event
			WHERE event_offset >= ?
			ORDER BY event_offset
			LIMIT ?`,
			o,
			limit,
		)
	}

	return db.QueryContext(
		ctx,
		`SELECT data
		FROM escf_event
		WHERE event_offset >= ?
		AND aggregate_id = ?
		ORDER BY event_offset
		LIMIT ?`,
		o,
		id,
		limit,
	)
}

// createEventSchema creates the schema elements for events.
func createEventSchema(ctx context.Context, db sqlx.DB) {
	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS escf_event (
			event_offset   INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id       TEXT NOT NULL UNIQUE,
			event_type     TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			created_at     INTEGER NOT NULL,
			data           BLOB NOT NULL
		)`,
	)

	sqlx.Exec(
		ctx,
		db,
		`CREATE INDEX IF NOT EXISTS escf_event_by_aggregate ON escf_event (
			aggregate_id,
			event_offset
		)`,
	)
}

// dropEventSchema drops the schema elements for events.
func dropEventSchema(ctx context.Context, db sqlx.DB) {
	sqlx.Exec(ctx, db, `DROP TABLE IF EXISTS escf_event`)
}

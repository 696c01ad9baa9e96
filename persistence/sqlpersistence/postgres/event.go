package postgres

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
		`INSERT INTO escf.event (
			event_id,
			event_type,
			aggregate_type,
			aggregate_id,
			created_at,
			data
		) VALUES (
			$1, $2, $3, $4, $5, $6
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
		FROM escf.event
		WHERE event_id = $1`,
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
	// A NULL limit means "no limit" to PostgreSQL.
	var lim interface{}
	if limit > 0 {
		lim = limit
	}

	if id == "" {
		return db.QueryContext(
			ctx,
			`SELECT data
			FROM escf.event
			WHERE event_offset >= $1
			ORDER BY event_offset
			LIMIT $2`,
			o,
			lim,
		)
	}

	return db.QueryContext(
		ctx,
		`SELECT data
		FROM escf.event
		WHERE event_offset >= $1
		AND aggregate_id = $2
		ORDER BY event_offset
		LIMIT $3`,
		o,
		id,
		lim,
	)
}

// createEventSchema creates the schema elements for events.
func createEventSchema(ctx context.Context, db sqlx.DB) {
	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS escf.event (
			event_offset   BIGSERIAL NOT NULL PRIMARY KEY,
			event_id       TEXT NOT NULL UNIQUE,
			event_type     TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			created_at     BIGINT NOT NULL,
			data           BYTEA NOT NULL
		)`,
	)

	sqlx.Exec(
		ctx,
		db,
		`CREATE INDEX IF NOT EXISTS event_by_aggregate ON escf.event (
			aggregate_id,
			event_offset
		)`,
	)
}

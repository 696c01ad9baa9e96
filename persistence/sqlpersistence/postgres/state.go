package postgres

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/internal/x/sqlx"
	"github.com/dogmatiq/escf/persistence"
)

// SelectState selects the state data of an aggregate instance.
func (driver) SelectState(
	ctx context.Context,
	db *sql.DB,
	k persistence.StateKey,
) (data []byte, ok bool, err error) {
	defer sqlx.Recover(&err)

	ok = sqlx.TryQueryRow(
		ctx,
		db,
		`SELECT data
		FROM escf.state
		WHERE aggregate_type = $1
		AND aggregate_id = $2`,
		[]interface{}{
			k.AggregateType,
			k.AggregateID,
		},
		&data,
	)

	return data, ok, nil
}

// UpsertState inserts or replaces the state data of an aggregate instance.
func (driver) UpsertState(
	ctx context.Context,
	db *sql.DB,
	k persistence.StateKey,
	data []byte,
) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(
		ctx,
		db,
		`INSERT INTO escf.state (
			aggregate_type,
			aggregate_id,
			data
		) VALUES (
			$1, $2, $3
		) ON CONFLICT (aggregate_type, aggregate_id) DO UPDATE SET
			data = excluded.data`,
		k.AggregateType,
		k.AggregateID,
		data,
	)

	return nil
}

// createStateSchema creates the schema elements for aggregate state.
func createStateSchema(ctx context.Context, db sqlx.DB) {
	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS escf.state (
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			data           BYTEA NOT NULL,

			PRIMARY KEY (aggregate_type, aggregate_id)
		)`,
	)
}

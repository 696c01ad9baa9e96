package sqlite

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
		FROM escf_state
		WHERE aggregate_type = ?
		AND aggregate_id = ?`,
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
		`INSERT INTO escf_state (
			aggregate_type,
			aggregate_id,
			data
		) VALUES (
			?, ?, ?
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
		`CREATE TABLE IF NOT EXISTS escf_state (
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			data           BLOB NOT NULL,

			PRIMARY KEY (aggregate_type, aggregate_id)
		)`,
	)
}

// dropStateSchema drops the schema elements for aggregate state.
func dropStateSchema(ctx context.Context, db sqlx.DB) {
	sqlx.Exec(ctx, db, `DROP TABLE IF EXISTS escf_state`)
}

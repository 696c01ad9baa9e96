// Package postgres is the PostgreSQL driver for sqlpersistence.
//
// It uses the pgx database/sql adaptor, registered under the name "pgx".
package postgres

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/internal/x/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// DriverName is the database/sql driver name for PostgreSQL.
const DriverName = "pgx"

// Driver is an implementation of sqlpersistence.Driver for PostgreSQL.
var Driver = driver{}

type driver struct{}

// IsCompatibleWith returns nil if this driver can be used with db.
func (driver) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	// Verify that we're using PostgreSQL and that $1-style placeholders are
	// supported.
	return db.QueryRowContext(
		ctx,
		`SELECT pg_backend_pid() WHERE 1 = $1`,
		1,
	).Err()
}

// CreateSchema creates the schema elements required by the PostgreSQL
// driver.
func (driver) CreateSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.InTx(ctx, db, func(tx *sql.Tx) {
		sqlx.Exec(ctx, tx, `CREATE SCHEMA IF NOT EXISTS escf`)

		createStateSchema(ctx, tx)
		createEventSchema(ctx, tx)
	})

	return nil
}

// DropSchema drops the schema elements required by the PostgreSQL driver.
func (driver) DropSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(ctx, db, `DROP SCHEMA IF EXISTS escf CASCADE`)

	return nil
}

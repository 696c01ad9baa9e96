// Package sqlite is the SQLite driver for sqlpersistence.
//
// It uses the pure-Go modernc.org/sqlite database/sql driver, registered
// under the name "sqlite".
package sqlite

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/internal/x/sqlx"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the database/sql driver name for SQLite.
const DriverName = "sqlite"

// Driver is an implementation of sqlpersistence.Driver for SQLite.
var Driver = driver{}

type driver struct{}

// IsCompatibleWith returns nil if this driver can be used with db.
func (driver) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	return db.QueryRowContext(
		ctx,
		`SELECT sqlite_version() WHERE 1 = ?`,
		1,
	).Err()
}

// CreateSchema creates the schema elements required by the SQLite driver.
func (driver) CreateSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.InTx(ctx, db, func(tx *sql.Tx) {
		createStateSchema(ctx, tx)
		createEventSchema(ctx, tx)
	})

	return nil
}

// DropSchema drops the schema elements required by the SQLite driver.
func (driver) DropSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	dropStateSchema(ctx, db)
	dropEventSchema(ctx, db)

	return nil
}

// DSN returns a data-source name for the database file at the given path,
// configured for use by a single process with concurrent readers.
func DSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

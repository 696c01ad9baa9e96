package sqlx

import (
	"context"
	"database/sql"
)

// DB is the subset of *sql.DB, *sql.Conn and *sql.Tx used by the helpers in
// this package.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ DB = (*sql.DB)(nil)
	_ DB = (*sql.Tx)(nil)
	_ DB = (*sql.Conn)(nil)
)

// InTx calls fn within a transaction on db.
//
// The transaction is committed if fn returns normally. It is rolled back if fn
// panics, including panics raised by Must().
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx)) {
	tx, err := db.BeginTx(ctx, nil)
	Must(err)
	defer tx.Rollback() // nolint:errcheck

	fn(tx)

	Must(tx.Commit())
}

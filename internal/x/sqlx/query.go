package sqlx

import (
	"context"
	"database/sql"
	"errors"
)

// TryQueryRow executes a single-row query on db and scans the result into
// values.
//
// It returns false if the query produces no rows.
func TryQueryRow(
	ctx context.Context,
	db DB,
	query string,
	args []any,
	values ...any,
) bool {
	err := db.QueryRowContext(ctx, query, args...).Scan(values...)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}

	Must(err)
	return true
}

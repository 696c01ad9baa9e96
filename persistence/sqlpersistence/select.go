package sqlpersistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dogmatiq/escf/persistence/sqlpersistence/postgres"
	"github.com/dogmatiq/escf/persistence/sqlpersistence/sqlite"
	"go.uber.org/multierr"
)

// SelectDriver returns the first built-in driver that is compatible with db.
//
// The returned error describes why each driver was rejected.
func SelectDriver(ctx context.Context, db *sql.DB) (Driver, error) {
	var rejected error

	for _, d := range []Driver{postgres.Driver, sqlite.Driver} {
		err := d.IsCompatibleWith(ctx, db)
		if err == nil {
			return d, nil
		}

		rejected = multierr.Append(
			rejected,
			fmt.Errorf("%T rejected %T: %w", d, db.Driver(), err),
		)
	}

	return nil, multierr.Append(
		fmt.Errorf("no built-in driver supports %T", db.Driver()),
		rejected,
	)
}

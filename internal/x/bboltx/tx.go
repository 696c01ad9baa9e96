package bboltx

import (
	"go.etcd.io/bbolt"
)

// View executes fn within a read-only transaction.
//
// Panics raised by Must() within fn propagate to the caller.
func View(db *bbolt.DB, fn func(tx *bbolt.Tx)) {
	Must(db.View(func(tx *bbolt.Tx) error {
		fn(tx)
		return nil
	}))
}

// Update executes fn within a read-write transaction.
//
// The transaction is rolled back if fn panics.
func Update(db *bbolt.DB, fn func(tx *bbolt.Tx)) {
	tx, err := db.Begin(true)
	Must(err)
	defer tx.Rollback() // nolint:errcheck

	fn(tx)

	Must(tx.Commit())
}

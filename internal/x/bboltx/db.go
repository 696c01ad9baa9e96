package bboltx

import (
	"context"
	"errors"
	"os"

	"github.com/dogmatiq/linger"
	"go.etcd.io/bbolt"
)

// Open opens the BoltDB database at path, creating it with the given file mode
// if it does not exist. A zero mode means 0600.
//
// The wait for the file lock is bounded by the deadline of ctx. A lock that is
// not acquired in time is reported as context.DeadlineExceeded.
func Open(
	ctx context.Context,
	path string,
	mode os.FileMode,
	opts *bbolt.Options,
) (*bbolt.DB, error) {
	if mode == 0 {
		mode = 0600
	}

	o, err := lockOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, mode, o)
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, context.DeadlineExceeded
	}

	return db, err
}

// lockOptions returns a copy of opts with a lock timeout no later than the
// deadline of ctx.
func lockOptions(ctx context.Context, opts *bbolt.Options) (*bbolt.Options, error) {
	// bbolt waits forever when given a non-positive timeout, so an expired
	// context must not reach bbolt.Open().
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := *bbolt.DefaultOptions
	if opts != nil {
		o = *opts
	}

	if d, ok := linger.FromContextDeadline(ctx); ok {
		if o.Timeout <= 0 || d < o.Timeout {
			o.Timeout = d
		}
	}

	return &o, nil
}

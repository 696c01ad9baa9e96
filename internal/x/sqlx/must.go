package sqlx

// PanicSentinel is a wrapper value used to identify panics caused by the
// helpers in this package.
type PanicSentinel struct {
	// Cause is the error that caused the panic.
	Cause error
}

// Must panics with a PanicSentinel if err is non-nil.
func Must(err error) {
	if err != nil {
		panic(PanicSentinel{err})
	}
}

// Recover recovers from a panic caused by Must().
//
// It is intended to be used in a defer statement. The error that caused the
// panic is assigned to *err.
func Recover(err *error) {
	if err == nil {
		panic("err must be a non-nil pointer")
	}

	switch v := recover().(type) {
	case PanicSentinel:
		*err = v.Cause
	case nil:
		return
	default:
		panic(v)
	}
}

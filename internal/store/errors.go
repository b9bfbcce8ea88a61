package store

import (
	"errors"
	"fmt"
)

// ErrNoSamples indicates the store holds no samples for the requested read.
// It is the explicit "none" result, not a failure.
var ErrNoSamples = errors.New("no samples stored")

// IOError wraps a driver or filesystem failure encountered by a store
// operation. The store never retries internally; callers decide whether the
// underlying cause is worth retrying.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// SchemaTooNewError is returned from the open path when the on-disk schema
// version exceeds the highest version this build knows. The database was
// written by a newer release; downgrading is not attempted.
type SchemaTooNewError struct {
	Found     int
	Supported int
}

func (e *SchemaTooNewError) Error() string {
	return fmt.Sprintf("database schema version %d is newer than supported version %d", e.Found, e.Supported)
}

package recordstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches an id or filter.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation marks a PersistenceError caused by a unique index.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// PersistenceError wraps a backend failure with the operation and table involved.
type PersistenceError struct {
	Op    string
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

package indexer

import (
	"errors"
	"fmt"
)

// ErrPersistence matches any *PersistenceError via errors.Is.
var ErrPersistence = errors.New("skill index persistence failed")

// PersistenceError reports that the index bundle could not be read, decoded,
// encoded or written. Op is one of "load", "decode", "encode" or "save".
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("skill index %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

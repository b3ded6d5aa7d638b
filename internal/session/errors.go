package session

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// InvalidInputError marks a rejected upload or an unreadable stored input.
// File names which document failed ("agents_config" or "messages_dataset").
type InvalidInputError struct {
	File   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input file %s: %s", e.File, e.Reason)
}

// StorageError wraps a failure of the backing artifact store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible through the requested owner scope.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

// Package store defines the errors shared by every storage backend.
// Backends live in sub-packages: memory, postgres and redisstore.
package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write loses against a newer version
	ErrConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a write would violate a unique key
	ErrDuplicate = errors.New("duplicate key")
)

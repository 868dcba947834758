package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("conflict: unique value already in use")

	// ErrUnavailable is returned for transport and query failures
	ErrUnavailable = errors.New("store unavailable")
)

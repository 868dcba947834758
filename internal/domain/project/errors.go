package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrProjectConflict indicates a name or folder is already used by an active project.
	ErrProjectConflict = errors.New("project name or folder already in use")
	// ErrStoreUnavailable indicates the backing store could not serve the request.
	ErrStoreUnavailable = errors.New("project store unavailable")
)

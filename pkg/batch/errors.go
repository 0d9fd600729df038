package batch

import "errors"

var (
	// ErrRootNotFound is returned when the batch root does not exist.
	ErrRootNotFound = errors.New("batch root not found")

	// ErrLocked is returned when another run holds the lock on the root.
	ErrLocked = errors.New("another run is processing this directory")
)

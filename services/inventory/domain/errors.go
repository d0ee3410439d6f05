package domain

import (
	"context"
	"errors"
)

// Sentinel errors for the inventory domain. Use errors.Is() to check these;
// adapters and services wrap them with operation context.
var (
	// ErrNotFound indicates the referenced record or one of its parents does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a create collided with an existing id.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates a schema or range violation detected before any write.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict indicates a transaction could not commit because of a concurrent modification.
	ErrConflict = errors.New("conflict")

	// ErrTimeout indicates the store deadline was exceeded.
	ErrTimeout = errors.New("timeout")

	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// IsRetryable reports whether err is a transient failure the caller may retry
// as-is: Conflict, Timeout or Unavailable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}

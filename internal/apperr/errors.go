// Package apperr defines the error taxonomy shared by every engine
// component. Handlers map these kinds onto HTTP statuses; services wrap
// them with context using the *f constructors.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Services return errors wrapping exactly one of these.
var (
	// ErrValidation marks malformed or out-of-range input. Recoverable
	// client-side, never retried by the engine.
	ErrValidation = errors.New("validation error")

	// ErrPrecondition marks required upstream state that is missing,
	// e.g. ordering without an approved link.
	ErrPrecondition = errors.New("precondition failed")

	// ErrInvalidTransition marks a status change that is not legal from
	// the record's current status.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConflict marks an optimistic concurrency loss or a uniqueness
	// violation (duplicate active link, duplicate open complaint). The
	// caller should re-read and retry the whole command.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an absent resource. Cross-org probes are
	// flattened onto this kind so existence itself does not leak.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an authorization failure on a resource the
	// caller is entitled to know exists.
	ErrForbidden = errors.New("forbidden")
)

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

func Preconditionf(format string, args ...interface{}) error {
	return wrap(ErrPrecondition, format, args...)
}

func Transitionf(format string, args ...interface{}) error {
	return wrap(ErrInvalidTransition, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return wrap(ErrForbidden, format, args...)
}

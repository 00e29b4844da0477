// Package errs defines the error kinds shared by the composition pipeline.
// Every error returned by the core packages wraps exactly one of the sentinels
// below, so callers can branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrInvalidInput marks out-of-range or inconsistent caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariantViolation marks an inconsistent plan or spec produced internally.
	ErrInvariantViolation = errors.New("generation invariant violation")

	// ErrSerialization marks values that cannot be encoded and failed file writes.
	ErrSerialization = errors.New("serialization error")
)

// Kind names used in API responses and metrics tags.
const (
	KindInvalidInput  = "invalid_input"
	KindInvariant     = "invariant_violation"
	KindSerialization = "serialization"
	KindInternal      = "internal"
)

// InvalidInput builds an ErrInvalidInput error.
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Invariant builds an ErrInvariantViolation error.
func Invariant(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// Serialization builds an ErrSerialization error.
func Serialization(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSerialization, fmt.Sprintf(format, args...))
}

// SerializationIO wraps an I/O failure so that both ErrSerialization and the
// underlying OS error remain visible to errors.Is.
func SerializationIO(op, path string, err error) error {
	return fmt.Errorf("%w: failed to %s %s: %w", ErrSerialization, op, path, err)
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariant
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	default:
		return KindInternal
	}
}

// Retryable reports whether the failure came from the filesystem rather than
// from the inputs, so the same request may succeed on another attempt.
func Retryable(err error) bool {
	if !errors.Is(err, ErrSerialization) {
		return false
	}
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}

package engine

import (
	"errors"
	"fmt"
)

// Kind classifies engine outcomes so the transport layer can map each
// failure to a distinct status and code.
type Kind int

const (
	// KindBadRequest covers malformed keys, length mismatches, digest
	// mismatches, and malformed owner identities.
	KindBadRequest Kind = iota + 1
	// KindNotFound is a read of an unknown key.
	KindNotFound
	// KindConflict is a write for a key that is already stored.
	KindConflict
	// KindCapacityExceeded means no eviction can free enough room.
	KindCapacityExceeded
	// KindStorageFailure is a filesystem or catalog I/O error, or a
	// detected metadata/file divergence.
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the outcome value returned by engine operations that fail.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return "engine error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the outcome kind of err, or zero when err carries none.
func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return 0
}

// IsKind reports whether err carries the given outcome kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func badRequestf(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Err: fmt.Errorf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Err: fmt.Errorf(format, args...)}
}

func capacityExceededf(format string, args ...any) error {
	return &Error{Kind: KindCapacityExceeded, Err: fmt.Errorf(format, args...)}
}

func storageFailure(err error) error {
	return &Error{Kind: KindStorageFailure, Err: err}
}

func storageFailuref(format string, args ...any) error {
	return &Error{Kind: KindStorageFailure, Err: fmt.Errorf(format, args...)}
}

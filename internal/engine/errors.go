package engine

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers classify with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrCapacity        = errors.New("lobby full")
	ErrInvalidState    = errors.New("invalid state")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrInternal        = errors.New("internal error")
)

var kinds = []error{
	ErrValidation,
	ErrConflict,
	ErrCapacity,
	ErrInvalidState,
	ErrNotFound,
	ErrUnauthorized,
	ErrDuplicatePlayer,
	ErrInternal,
}

// Error is a classified, client-safe error. Msg is what the participant sees.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewError builds a classified error outside of this package (room timeouts,
// unknown players).
func NewError(kind error, format string, args ...any) error {
	return errorf(kind, format, args...)
}

// KindOf returns the kind err wraps, or ErrInternal for anything unclassified.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

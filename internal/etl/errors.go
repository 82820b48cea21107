package etl

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStorage    = errors.New("storage error")
	ErrDatabase   = errors.New("database error")
	ErrValidation = errors.New("validation error")
)

// StageError records which pipeline stage failed and with what kind of
// error. errors.Is matches both the kind and anything in the wrapped chain.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// kindOf classifies err into one of the error kinds. A cancelled or expired
// context is reported as such. Other unclassified errors are treated as
// database errors since every stage except extraction talks to the database.
func kindOf(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrStorage):
		return ErrStorage
	default:
		return ErrDatabase
	}
}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable matches every failure of the underlying medium:
	// it could not be opened, written, or read, or the store is closed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRecordNotFound is returned only by operations that require the
	// record to exist. Deletes and listings never return it.
	ErrRecordNotFound = errors.New("record not found")

	errClosed = errors.New("store is closed")
)

// UnavailableError wraps a storage failure with the operation that hit it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorageUnavailable) hold for every
// UnavailableError.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}

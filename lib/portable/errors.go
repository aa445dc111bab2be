package portable

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnsupportedType is returned when no type descriptor is registered for a value
	ErrUnsupportedType = errors.New("unsupported object type")

	// ErrCapacityExceeded is returned when a write would grow a stream past its limit
	ErrCapacityExceeded = errors.New("stream capacity exceeded")

	// ErrRawModeActive is returned when a named field is written after raw data
	ErrRawModeActive = errors.New("named fields are not allowed after raw data")

	// ErrDuplicateType is returned when a type or type id is registered twice
	ErrDuplicateType = errors.New("duplicate type registration")

	// ErrCyclicCollection is returned when an object array or map contains itself
	ErrCyclicCollection = errors.New("collection contains itself")

	// ErrMalformed is returned by the inspector for truncated or inconsistent data
	ErrMalformed = errors.New("malformed portable data")
)

// UnsupportedTypeError carries the runtime type that could not be encoded.
// It matches ErrUnsupportedType with errors.Is.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s [type=%v]", ErrUnsupportedType, e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// malformed creates an ErrMalformed error with position information
func malformed(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, pos, fmt.Sprintf(format, args...))
}

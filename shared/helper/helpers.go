package helper

import (
	"errors"
	"fmt"
)

// ErrUnexpectedType is returned when a result does not have the requested type.
var ErrUnexpectedType = errors.New("unexpected type")

// GetTypedValueOf asserts the result of a getter function to the expected type T.
// Errors from getFn are returned unchanged. A nil result yields the zero T.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrUnexpectedType, res, zero)
	}

	return val, nil
}

// MustGetTypedValue is the panic-on-failure variant of GetTypedValueOf.
// Use when failure should be fatal (e.g., operation tables fixed at startup).
func MustGetTypedValue[T any](getFn func() (any, error)) T {
	res, err := GetTypedValueOf[T](getFn)
	if err != nil {
		panic(err)
	}
	return res
}

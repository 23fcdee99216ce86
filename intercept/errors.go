package intercept

import (
	"errors"

	"github.com/on-the-ground/memo_ive_go/memo"
)

var (
	// ErrMalformedKey is returned for operation keys not of the form
	// "Class.op".
	ErrMalformedKey = errors.New("intercept: malformed operation key")
	// ErrUnknownOperation is returned when a configured operation is not in
	// the class's operation table.
	ErrUnknownOperation = errors.New("intercept: unknown operation")
	// ErrUnknownClass is returned when a configuration entry names a class
	// that BindAll was not given.
	ErrUnknownClass = errors.New("intercept: unknown class")
	// ErrNotMemoized is returned when ignore_arguments or copy_policy names
	// an operation that to_cache does not list.
	ErrNotMemoized = errors.New("intercept: operation is not listed in to_cache")
	// ErrClassConflict is returned when a class name is bound twice with
	// different operation tables.
	ErrClassConflict = errors.New("intercept: class already bound with a different operation table")
	// ErrUnknownIgnoredParameter is returned when an ignored name is not a
	// parameter of the configured operation.
	ErrUnknownIgnoredParameter = memo.ErrUnknownIgnoredParameter
)

// ConfigError reports an invalid configuration entry. Field is the
// configuration path of the entry, such as "ignore_arguments.AFTDF.ft_loop".
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

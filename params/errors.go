package params

import "errors"

// Configuration errors. These are reported once, when a Spec is built.
var (
	ErrEmptyName          = errors.New("params: parameter name is empty")
	ErrDuplicateParameter = errors.New("params: duplicate parameter")
	ErrDefaultOrder       = errors.New("params: required parameter follows a parameter with a default")
	ErrVariadic           = errors.New("params: variadic parameters cannot be canonicalized")
)

// Binding errors. These are reported per call and nothing is executed.
var (
	ErrTooManyArguments = errors.New("params: too many positional arguments")
	ErrUnknownParameter = errors.New("params: unknown keyword argument")
	ErrMissingArgument  = errors.New("params: missing required argument")
)

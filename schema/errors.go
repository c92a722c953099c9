package schema

import "errors"

var (
	// ErrDimensionMismatch is a configuration error: a stored or queried vector
	// does not match the index dimension. Fatal at startup, never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrToolNotFound is returned by the registry when the model requests an
	// unregistered capability.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidToolArguments is returned by the registry when a required
	// argument is missing or has the wrong shape.
	ErrInvalidToolArguments = errors.New("invalid tool arguments")

	// ErrGenerationFailed wraps provider-level failures. It is the only error
	// class that escalates out of an exchange to the caller.
	ErrGenerationFailed = errors.New("generation failed")
)

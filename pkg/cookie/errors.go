package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingName is returned when a cookie is built without a name.
	ErrMissingName = errors.New("cookie name is required")

	// ErrMissingValue is returned when a cookie is built without a value.
	ErrMissingValue = errors.New("cookie value is required")

	// ErrInvalidPath is returned when a cookie whose path does not start
	// with "/" is added to a jar or a browser.
	ErrInvalidPath = errors.New("cookie path must start with \"/\"")

	// ErrTooManyArgs is returned by FromArgs for more than six arguments.
	ErrTooManyArgs = errors.New("too many cookie arguments")

	// ErrInvalidArg is returned by FromArgs when an argument has the wrong type.
	ErrInvalidArg = errors.New("invalid cookie argument")
)

// ConstructionError reports why a cookie could not be built.
type ConstructionError struct {
	// Field is the attribute that failed validation (e.g. "name", "path")
	Field string

	// Err is one of the package sentinel errors
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid cookie %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func constructionError(field string, err error) error {
	return &ConstructionError{Field: field, Err: err}
}

// Package errors provides the typed error taxonomy for gateway calls.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrUnauthenticated means an authenticated call was attempted with no
	// token in the store. No network request is made in this case.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the transparent token refresh failed. The
	// token store has been cleared; the caller must log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoEligibleTargets means a bulk trade was submitted with an empty
	// target list.
	ErrNoEligibleTargets = errors.New("no eligible targets")
)

// RequestError represents a non-2xx response from the backend, other than
// the 401 handled by the refresh path.
type RequestError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request failed [%s %s]: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("request failed [%s %s]: status %d", e.Method, e.Path, e.StatusCode)
}

// NewRequestError creates a new RequestError.
func NewRequestError(statusCode int, method, path, body string) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Method:     method,
		Path:       path,
		Body:       body,
	}
}

// SchemaError represents a response body that does not conform to its
// declared shape. It is always fatal to the individual call; callers never
// receive a partially-typed value.
type SchemaError struct {
	Schema   string
	Expected string
	Received string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation [%s]: expected %s, received %s", e.Schema, e.Expected, e.Received)
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(schema, expected, received string) *SchemaError {
	return &SchemaError{
		Schema:   schema,
		Expected: expected,
		Received: received,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package postsync

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned by the gate when no session is present.
	ErrAuthRequired = errors.New("authentication required")

	// ErrLoadFailed wraps failures of the post listing.
	ErrLoadFailed = errors.New("load failed")

	// ErrMutationFailed wraps failed create and update requests.
	ErrMutationFailed = errors.New("mutation failed")

	// ErrDeleteFailed wraps failed delete requests.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrBusy is returned when another store request of the same controller
	// has not completed yet.
	ErrBusy = errors.New("another request is in flight")
)

// ValidationError represents a rejected form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// DecodeError is returned when a store response does not have the shape of
// a post (or list of posts).
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from the post store API.
type StatusError struct {
	Method     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s /posts: unexpected status %d", e.Method, e.StatusCode)
}

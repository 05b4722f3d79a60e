package apperr

import (
	"errors"
	"fmt"
)

// Category classifies application failures for transport mapping.
type Category string

const (
	// CategoryValidation marks malformed or missing input, rejected before
	// any store access.
	CategoryValidation Category = "validation"
	// CategoryNotFound marks a referenced entity that does not exist.
	CategoryNotFound Category = "not_found"
	// CategoryStore marks a query execution or connectivity failure in the
	// underlying graph store.
	CategoryStore Category = "store"
)

// Error is the application error type carrying a category and an optional
// wrapped cause.
type Error struct {
	Category Category
	Message  string
	Kind     string // entity kind for not-found errors
	ID       string // entity identifier for not-found errors
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a validation error from a format string.
func Validation(format string, args ...any) *Error {
	return &Error{
		Category: CategoryValidation,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NotFound builds a not-found error naming the missing entity.
func NotFound(kind, id string) *Error {
	return &Error{
		Category: CategoryNotFound,
		Message:  fmt.Sprintf("%s %s not found", kind, id),
		Kind:     kind,
		ID:       id,
	}
}

// Store wraps an underlying datastore failure with the failing operation.
func Store(op string, err error) *Error {
	return &Error{
		Category: CategoryStore,
		Message:  op,
		Err:      err,
	}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Category == CategoryValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Category == CategoryNotFound
}

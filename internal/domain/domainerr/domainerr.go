// Package domainerr defines the error categories shared by the checkout
// domain. Package-specific errors wrap one of these sentinels so callers can
// classify failures with errors.Is regardless of where they originated.
package domainerr

import "github.com/go-faster/errors"

var (
	// ErrValidation marks missing, empty or non-positive input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown menu item, order or student.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientPoints is returned when a redemption exceeds the balance.
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	// ErrPaymentDeclined is returned when payment authorization fails.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrPersistence marks a repository failure.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError describes invalid input for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Persistence wraps a repository error so it matches ErrPersistence while
// keeping the underlying cause reachable.
func Persistence(err error, op string) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string { return e.op + ": " + e.err.Error() }

func (e *persistenceError) Unwrap() []error { return []error{ErrPersistence, e.err} }

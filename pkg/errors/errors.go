package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType defines the categories an error can fall into. Handlers map
// each category to an HTTP status.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError is the error type services return to handlers. Validation errors
// carry every violated rule in Violations so clients see them all at once.
type AppError struct {
	Type       ErrorType
	Message    string
	Violations []string
	Err        error
}

// Error implements the error interface
func (e *AppError) Error() string {
	switch {
	case len(e.Violations) > 0:
		return fmt.Sprintf("%s: %s", e.Type, strings.Join(e.Violations, "; "))
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error from one or more rule violations.
func NewValidation(violations ...string) error {
	msg := "validation failed"
	if len(violations) == 1 {
		msg = violations[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    msg,
		Violations: violations,
	}
}

// NewNotFound creates a not found error. The message is client-facing.
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInternal creates an internal error wrapping the underlying cause. The
// cause is logged server-side and never echoed to clients.
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap adds context to an error, preserving its category (and violations)
// when it is already an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			Violations: appErr.Violations,
			Err:        appErr.Err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Violations returns the rule violations carried by a validation error, or
// nil for any other error.
func Violations(err error) []string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type == ErrorTypeValidation {
		if len(appErr.Violations) > 0 {
			return appErr.Violations
		}
		return []string{appErr.Message}
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }

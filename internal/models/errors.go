package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("forbidden")
	ErrBackend            = errors.New("backend rejected the request")
	ErrVideoNotReady      = errors.New("video is not ready yet")
	ErrInvalidInput       = errors.New("invalid input data")
)

// ValidationError is a form error shown inline next to the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets callers match any validation failure with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BackendError carries the message returned by the backend alongside ErrBackend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (status %d)", e.Status)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return ErrBackend
}

// BackendMessage returns the backend-provided message if err carries one,
// otherwise fallback.
func BackendMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}

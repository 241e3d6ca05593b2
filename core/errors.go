package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Validation errors - caught before any network call
	ErrValidation       = errors.New("validation failed")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Network errors
	ErrRequestTimeout   = errors.New("request timed out")
	ErrConnectionFailed = errors.New("connection failed")
	ErrRequestFailed    = errors.New("request failed")

	// Server-rejected errors - well-formed request, non-success response
	ErrServerRejected     = errors.New("request rejected by server")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionAbsent    = errors.New("no persisted session")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// ClientError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type ClientError struct {
	Op      string // Operation that failed (e.g., "api.Login")
	Kind    string // Error kind (e.g., "network", "server", "validation")
	ID      string // Optional ID of the entity involved
	Message string // Human-readable message; server text verbatim when available
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *ClientError) Error() string {
	if e.Op != "" && e.Message != "" {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %s", e.Op, e.ID, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError
func NewClientError(op, kind string, err error) *ClientError {
	return &ClientError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsTimeout reports whether an error is the request-timeout case, which is
// surfaced distinctly from generic network failures.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrRequestTimeout)
}

// IsNetworkError reports whether an error is a transport-level failure
// (timeout included).
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrRequestTimeout) ||
		errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrRequestFailed)
}

// IsValidation reports whether an error was raised by input validation
// before any network call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPasswordMismatch)
}

// IsServerRejected reports whether the backend processed the request and
// refused it.
func IsServerRejected(err error) bool {
	return errors.Is(err, ErrServerRejected) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientPoints)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}

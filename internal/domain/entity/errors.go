package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrTransientUnavailable indicates the remote summarizer is temporarily unable to serve
	// (model loading, overloaded, rate limited). Callers may retry.
	ErrTransientUnavailable = errors.New("summarizer temporarily unavailable")

	// ErrMalformedArticle indicates an article file lacks the Content marker.
	ErrMalformedArticle = errors.New("malformed article file")

	// ErrMalformedSummary indicates a summary file lacks the Summary marker.
	ErrMalformedSummary = errors.New("malformed summary file")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// RequestError is a non-transient failure of a single summarization request:
// an unexpected status code, a transport failure or an unparseable response.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("summarize request failed: %s", e.Message)
	}
	return fmt.Sprintf("summarize request failed: HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err signals a temporary unavailability of the summarizer.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientUnavailable)
}

// IsRequestError reports whether err is, or wraps, a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

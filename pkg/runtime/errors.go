// Package runtime provides the HTTP transport, session and configuration
// shared by every API call.
package runtime

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned when the server answers 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the server answers 403.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest is returned for any other 4xx answer.
	ErrBadRequest = errors.New("bad request")

	// ErrServer is returned for 5xx answers.
	ErrServer = errors.New("server error")

	// ErrNoBaseURL is returned when no API base URL is configured.
	ErrNoBaseURL = errors.New("no API base URL configured")

	// ErrInvalidResponse is returned when a 2xx body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string // server-supplied message, may be empty
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap maps the status code onto one of the sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// TransportError represents a network-level failure (no response received).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// UserMessage returns the message the server attached to err, or fallback
// when there is none.
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return fallback
}

// Package apierr holds the error kinds shared by the store, the catalog
// client and the HTTP handlers, and maps them onto status codes.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that lost a race the store could not absorb.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports the first invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is a failed call to the catalog service. Status is the
// upstream HTTP status, or 0 when no response was received.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream returned %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StoreError wraps a transaction or connectivity failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError unless it already carries a domain kind.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var ue *UpstreamError
	var se *StoreError
	if errors.As(err, &ve) || errors.As(err, &ue) || errors.As(err, &se) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Status maps err to the HTTP status the API answers with.
func Status(err error) int {
	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &ue):
		if ue.Status >= 400 {
			return ue.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

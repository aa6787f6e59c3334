package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when the status store has no record for a job id
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidStatus is returned when a status outside the known set is written
	ErrInvalidStatus = errors.New("invalid job status")
)

// ValidationError reports a malformed or absent message field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid message: " + e.Reason
	}
	return fmt.Sprintf("invalid message: %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a new validation error
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransportError wraps a failed outbound HTTP or storage call
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// ParseError wraps a malformed response body from the catalog or status API
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return e.Op + ": malformed response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new parse error
func NewParseError(op string, err error) error {
	return &ParseError{Op: op, Err: err}
}

// ItemEnrichmentError is scoped to a single item and never aborts a batch
type ItemEnrichmentError struct {
	Item string
	Err  error
}

func (e *ItemEnrichmentError) Error() string {
	return fmt.Sprintf("enrich %q: %s", e.Item, e.Err.Error())
}

func (e *ItemEnrichmentError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient transport failure
// that a redelivery could plausibly fix
func IsRetryable(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return false
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return false
	}
	if errors.Is(err, ErrJobNotFound) {
		return false
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

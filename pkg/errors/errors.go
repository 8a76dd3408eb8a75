// Package errors defines the error taxonomy shared by every ldpcore component.
package errors

import (
	"errors"
	"fmt"
)

// Code is one of the error categories defined by the core's error handling design.
type Code string

const (
	// NotFound — no resource at target.
	NotFound Code = "NOT_FOUND"
	// ConstraintViolation — payload rejected by the constraint validator; carries the violations.
	ConstraintViolation Code = "CONSTRAINT_VIOLATION"
	// StorageConflict — concurrent write or revision mismatch; caller may retry.
	StorageConflict Code = "STORAGE_CONFLICT"
	// TransientStorageError — I/O or network hiccup; the resource service's Get retries each store read once, other operations surface it.
	TransientStorageError Code = "TRANSIENT_STORAGE_ERROR"
	// RDFParseError — malformed input in read/update.
	RDFParseError Code = "RDF_PARSE_ERROR"
	// AuthDenied — authorization engine returned insufficient modes.
	AuthDenied Code = "AUTH_DENIED"
	// FatalConfiguration — no RDF implementation discoverable, no administrator set; aborts startup.
	FatalConfiguration Code = "FATAL_CONFIGURATION"
)

// CoreError is a structured error carrying a Code, a message, an optional cause,
// and free-form details (e.g. the constraint violations or parse position).
type CoreError struct {
	Code    Code
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Err }

// WithDetail attaches a detail key/value and returns the receiver for chaining.
func (e *CoreError) WithDetail(key string, value interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a CoreError with no wrapped cause.
func New(code Code, message string) *CoreError {
	return &CoreError{Code: code, Message: message}
}

// Wrap creates a CoreError wrapping an underlying cause.
func Wrap(code Code, message string, err error) *CoreError {
	return &CoreError{Code: code, Message: message, Err: err}
}

// Constructors mirroring each taxonomy entry.

func ErrNotFound(identifier string) *CoreError {
	return New(NotFound, "no resource at target").WithDetail("identifier", identifier)
}

func ErrConstraintViolation(identifier string, violations interface{}) *CoreError {
	return New(ConstraintViolation, "candidate graph rejected by constraint validator").
		WithDetail("identifier", identifier).
		WithDetail("violations", violations)
}

func ErrStorageConflict(identifier, reason string) *CoreError {
	return New(StorageConflict, reason).WithDetail("identifier", identifier)
}

func ErrTransientStorage(op string, err error) *CoreError {
	return Wrap(TransientStorageError, "transient storage failure", err).WithDetail("operation", op)
}

func ErrRDFParse(syntax string, err error) *CoreError {
	return Wrap(RDFParseError, "malformed RDF input", err).WithDetail("syntax", syntax)
}

func ErrAuthDenied(identifier, agentIRI string) *CoreError {
	return New(AuthDenied, "insufficient access modes").
		WithDetail("identifier", identifier).
		WithDetail("agent", agentIRI)
}

func ErrFatalConfiguration(reason string) *CoreError {
	return New(FatalConfiguration, reason)
}

// Is reports whether err carries the given Code anywhere in its chain.
func Is(err error, code Code) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, or "" if err is not a CoreError.
func CodeOf(err error) Code {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

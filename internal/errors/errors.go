// Package errors provides the typed errors returned by quote calculations.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates a malformed request (bad quantity, empty cart)
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates reference data could not be parsed
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration or catalog error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotFound indicates an unknown destination, origin, item or service
	TypeNotFound Type = "NOT_FOUND"

	// TypeAmbiguous indicates a lookup matched more than one zone record
	TypeAmbiguous Type = "AMBIGUOUS_RECORD"

	// TypeServiceNotAllowed indicates a restricted service outside the privileged zone
	TypeServiceNotAllowed Type = "SERVICE_NOT_ALLOWED"

	// TypeItemNotInstallable indicates an installation request for an item without an install rate
	TypeItemNotInstallable Type = "ITEM_NOT_INSTALLABLE"

	// TypeUnavailableRate indicates a service with no configured rate for an item
	TypeUnavailableRate Type = "UNAVAILABLE_RATE"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Item    string                 `json:"item,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithItem records the cart item that caused the error
func (e *Error) WithItem(item string) *Error {
	e.Item = item
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType checks if an error (or anything it wraps) is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := As(err); ok {
		return e.Type == t
	}
	return false
}

// TypeOf returns the error type, or TypeInternal for foreign errors
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return TypeInternal
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// NotFound creates a not found error
func NotFound(kind, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", kind, identifier).WithContext(kind, identifier)
}

// Ambiguous creates an ambiguous record error
func Ambiguous(key string, matches int) *Error {
	return Newf(TypeAmbiguous, "%d zone records match %s", matches, key).
		WithContext("key", key).
		WithContext("matches", matches)
}

// ServiceNotAllowed creates a zone gating error
func ServiceNotAllowed(service, zone, privileged string) *Error {
	return Newf(TypeServiceNotAllowed, "service %s is only available in %s, destination is in %s", service, privileged, zone).
		WithContext("service", service).
		WithContext("zone", zone).
		WithContext("privileged_zone", privileged)
}

// ItemNotInstallable creates an installation availability error
func ItemNotInstallable(item, service string) *Error {
	return Newf(TypeItemNotInstallable, "item %s cannot be installed with %s", item, service).
		WithItem(item).
		WithContext("service", service)
}

// UnavailableRate creates a missing rate error
func UnavailableRate(item, service string) *Error {
	return Newf(TypeUnavailableRate, "no %s rate configured for item %s", service, item).
		WithItem(item).
		WithContext("service", service)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

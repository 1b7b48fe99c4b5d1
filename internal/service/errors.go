// Package service provides business logic services for Kurosawa Movies.
package service

import (
	"errors"
	"sort"
	"strings"
)

// Common service errors.
var (
	// ErrPermissionDenied indicates the principal lacks the required role
	// or ownership for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidToken indicates the presented token does not resolve to an
	// active user.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInternalError indicates an unexpected infrastructure failure.
	ErrInternalError = errors.New("internal server error")
)

// ValidationError is a field-keyed collection of input violations. It keeps
// the shape of the API's error envelope: each offending field maps to one or
// more human-readable messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation message for a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no violations were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Package domain defines core types, interfaces, and errors for Athena query execution.
package domain

import (
	"errors"
	"fmt"
)

// ErrNoResultLocation is returned when an execution succeeds but the service
// reports no location for its result object.
var ErrNoResultLocation = errors.New("execution succeeded without a result location")

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TransportError indicates that a call to the execution service or to object
// storage failed at the network or service layer. It is never retried by the
// query flow.
type TransportError struct {
	Op   string // e.g. "athena.StartQueryExecution"
	Code string // service error code, when the service returned one
	Err  error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indicates that a result object could not be read as tabular text.
type ParseError struct {
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse result %q: %v", e.Location, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// QueryFailure describes an execution that reached a terminal state other than
// SUCCEEDED. It is reported alongside an empty result rather than returned.
type QueryFailure struct {
	State   ExecutionState
	Reason  string
	Message string
}

func (e *QueryFailure) Error() string {
	return fmt.Sprintf("query %s: %s", e.State, e.Message)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

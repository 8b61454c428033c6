// Package apperrors defines the error taxonomy surfaced to API callers.
// Every member carries a stable machine-readable code and the HTTP status it
// maps to; anything that is not an *Error is treated as an internal failure
// and its detail is withheld from the response.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is the machine-readable error classification.
type Code string

const (
	CodeInvalidArgument Code = "VALIDATION_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a caller-visible failure with a stable code.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// InvalidArgument reports malformed or out-of-bounds input.
func InvalidArgument(message string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message, Status: http.StatusBadRequest}
}

// NotFound reports an absent entity, e.g. NotFound("Poll").
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound}
}

// Forbidden reports a failed ownership check.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// InvalidState reports an action disallowed by the entity's current state,
// e.g. voting on an inactive poll or unliking without a prior like.
func InvalidState(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message, Status: http.StatusBadRequest}
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

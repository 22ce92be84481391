// Package httpx holds the JSON request/response helpers shared by every HTTP handler.
package httpx

import (
	"fmt"
	"net/http"
)

// Error is an error with an HTTP status and a client-safe message.
// Handlers return it (or a sentinel mapped to it) and WriteErr renders {"error": Message}.
type Error struct {
	Status  int
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// NewError returns an *Error with the given status and message.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

var (
	ErrUnauthorized = NewError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = NewError(http.StatusForbidden, "Forbidden")
	ErrInternal     = NewError(http.StatusInternalServerError, "Internal server error")
)

// NotFound returns a 404 "<what> not found" error.
func NotFound(what string) *Error {
	return NewError(http.StatusNotFound, what+" not found")
}

// BadRequest returns a 400 error with message.
func BadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

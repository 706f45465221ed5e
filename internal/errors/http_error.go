package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusClientClosedRequest is reported when the caller gave up before the
// request could be served. It is not a registered HTTP status.
const StatusClientClosedRequest = 499

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
	Detail  string
	Err     error
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports missing or malformed request fields.
func NewValidationError(fields ...string) *HTTPError {
	return &HTTPError{
		Code:    http.StatusBadRequest,
		Message: "missing or invalid fields: " + strings.Join(fields, ", "),
	}
}

// NewConflictError reports a slot whose capacity is exhausted.
func NewConflictError(slot, date string, doctorID, capacity int) *HTTPError {
	return &HTTPError{
		Code:    http.StatusConflict,
		Message: "slot fully booked",
		Detail:  fmt.Sprintf("slot %s on %s for doctor %d has reached its capacity of %d", slot, date, doctorID, capacity),
	}
}

func NewNotFoundError(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// NewStorageError wraps a persistence failure. The cause is kept for logging
// and never shown to clients.
func NewStorageError(op string, err error) *HTTPError {
	return &HTTPError{
		Code:    http.StatusInternalServerError,
		Message: "storage error",
		Detail:  op,
		Err:     err,
	}
}

// NewCanceledError reports a request abandoned by its caller, typically a
// context cancelled or timed out while waiting for a slot lock.
func NewCanceledError(err error) *HTTPError {
	return &HTTPError{
		Code:    StatusClientClosedRequest,
		Message: "request canceled",
		Err:     err,
	}
}

// StatusCode maps any error to the HTTP status it should be reported with.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

func IsValidation(err error) bool { return StatusCode(err) == http.StatusBadRequest }
func IsConflict(err error) bool   { return StatusCode(err) == http.StatusConflict }
func IsNotFound(err error) bool   { return StatusCode(err) == http.StatusNotFound }
func IsCanceled(err error) bool   { return StatusCode(err) == StatusClientClosedRequest }

// IsStorage reports whether err came from the persistence layer.
func IsStorage(err error) bool {
	var httpErr *HTTPError
	return stderrors.As(err, &httpErr) && httpErr.Code == http.StatusInternalServerError
}

// Helper for common errors
var (
	ErrBadRequest = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

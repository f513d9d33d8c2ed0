// Package domainerrors provides code-based errors shared across the domain and
// transport layers. Services return these so handlers can translate failures
// into consistent HTTP responses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Codes are stable strings and double as the
// machine-readable error field of HTTP responses.
type Code string

const (
	// CodeInvalidInput marks input that fails domain validation.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks a malformed or undecodable request.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeNotFound marks an absent entity.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a state conflict, e.g. a run already in flight.
	CodeConflict Code = "conflict"

	// CodeUnavailable marks a dependency outage worth retrying later.
	CodeUnavailable Code = "unavailable"

	// CodeInternal marks unexpected failures that should not leak details.
	CodeInternal Code = "internal"
)

// Error is the concrete domain error. It carries a code, a human-readable
// message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a domain code and message. A nil err
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error, defaulting to CodeInternal for
// errors that did not originate in the domain.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package check

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for check backends.
type ErrorCategory string

const (
	// ErrorTimeout indicates the backend took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the backend returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorBackendOutage indicates the backend is unavailable
	ErrorBackendOutage ErrorCategory = "backend_outage"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps checker failures with normalized categorization. The batch
// orchestrator uses the category to decide between degrading a single pair to
// undetermined and treating a chunk as a systemic failure.
type Error struct {
	Category   ErrorCategory
	Kind       string
	Message    string
	Underlying error
	Retryable  bool // Whether this error is worth retrying
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("checker %s [%s]: %s: %v", e.Kind, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("checker %s [%s]: %s", e.Kind, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a new normalized checker error
func NewError(category ErrorCategory, kind, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorBackendOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:   category,
		Kind:       kind,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// CategoryOf extracts the error category, defaulting to ErrorInternal for
// errors that did not originate in a checker.
func CategoryOf(err error) ErrorCategory {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}

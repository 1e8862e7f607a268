package errors

import "fmt"

// ErrorCode represents an offstack error code.
type ErrorCode string

const (
	ErrValidation      ErrorCode = "VALIDATION"       // 400: missing/malformed input
	ErrInvalidArgument ErrorCode = "INVALID_ARGUMENT" // 400: caller contract violation (pagination)
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrCancelled       ErrorCode = "CANCELLED"        // 499: caller context cancelled
	ErrStorage         ErrorCode = "STORAGE"          // 500: persistence failure
	ErrIndexStale      ErrorCode = "INDEX_STALE"      // non-fatal: row written, index repair pending
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for missing or malformed input fields.
func NewValidation(msg string) *Error {
	return &Error{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidArgument creates a 400 error for a caller contract violation,
// e.g. page or limit below 1.
func NewInvalidArgument(msg string) *Error {
	return &Error{
		Code:    ErrInvalidArgument,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a snippet cannot be found.
func NewNotFound(id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snippet not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewCancelled creates a 499 error for an operation interrupted by its context.
func NewCancelled() *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: "operation cancelled by caller",
	}
}

// NewStorage creates a 500 error for unexpected persistence failures.
func NewStorage(err error) *Error {
	msg := "storage error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
	}
}

// NewIndexStale creates the non-fatal warning reported when a row write
// succeeded but the search index entry could not be written. The row stands;
// the index entry is flagged for the next reindex pass.
func NewIndexStale(id string) *Error {
	return &Error{
		Code:    ErrIndexStale,
		Status:  200,
		Message: fmt.Sprintf("search index entry for %s is stale; run reindex to repair", id),
		Details: map[string]any{"id": id},
	}
}

// Is checks if an error is an offstack Error with the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

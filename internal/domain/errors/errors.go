package errors

import (
	"net/http"

	"refugis/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches errors by business code so that WithDetails copies still satisfy errors.Is.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Request shape errors
	ErrInvalidRequest = NewBaseError(
		http.StatusBadRequest,
		"INVALID_REQUEST",
		"The request is not valid",
		"",
	)

	ErrInvalidFilter = NewBaseError(
		http.StatusBadRequest,
		"INVALID_FILTER",
		"shelter_id and creator_id filters are mutually exclusive",
		"",
	)

	ErrInvalidCondition = NewBaseError(
		http.StatusBadRequest,
		"INVALID_CONDITION",
		"Condition must be a number between 0 and 3",
		"",
	)

	// Identity errors
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Caller identity is missing or invalid",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)

	// Proposal lifecycle errors
	ErrProposalNotFound = NewBaseError(
		http.StatusNotFound,
		"PROPOSAL_NOT_FOUND",
		"Proposal not found",
		"",
	)

	ErrAlreadyReviewed = NewBaseError(
		http.StatusConflict,
		"ALREADY_REVIEWED",
		"Proposal has already been reviewed",
		"",
	)

	// Shelter errors
	ErrShelterNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Shelter not found",
		"",
	)

	ErrTargetMissing = NewBaseError(
		http.StatusNotFound,
		"TARGET_MISSING",
		"Target shelter does not exist",
		"",
	)

	// Cascade errors
	ErrMediaCleanupFailed = NewBaseError(
		http.StatusInternalServerError,
		"MEDIA_CLEANUP_FAILED",
		"Failed to delete shelter media",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// DatabaseExecuteError represents a document store failure, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, e.details).Error()
}

// Unwrap exposes the store error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "INTERNAL_ERROR"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Document store operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

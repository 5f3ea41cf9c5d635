package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable, client-safe error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. It is never sent to clients.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError with an explicit status. Retryable follows code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

func newError(code ErrorCode, message string) *AppError {
	return New(code, message, code.HTTPStatus())
}

// NotFound reports a missing resource; id is omitted from details when empty.
func NotFound(resource, id string) *AppError {
	e := newError(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource)).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// AlreadyExists reports a unique field collision.
func AlreadyExists(resource, field string) *AppError {
	return newError(ErrCodeAlreadyExists, fmt.Sprintf("A %s with this %s already exists.", resource, field)).
		WithDetail("resource", resource).
		WithDetail("field", field)
}

// Conflict reports a request that contradicts the resource's current state.
func Conflict(reason string) *AppError {
	return newError(ErrCodeConflict, reason)
}

// Validation reports a malformed or invalid request.
func Validation(message string) *AppError {
	return newError(ErrCodeInvalidInput, message)
}

// InvalidCredentials is returned for every failed login. The message is the
// same whatever the reason so callers cannot probe for existing accounts.
func InvalidCredentials() *AppError {
	return newError(ErrCodeInvalidCredentials, "Invalid credentials.")
}

// Unauthorized reports a request without a usable identity.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return newError(ErrCodeUnauthorized, reason)
}

// Forbidden reports an identity without the required role.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return newError(ErrCodeForbidden, reason)
}

// RateLimited reports a throttled client.
func RateLimited() *AppError {
	return newError(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.")
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return newError(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").
		WithCause(cause)
}

// DatabaseError hides a storage failure behind a generic message.
func DatabaseError(cause error) *AppError {
	return newError(ErrCodeDatabaseError, "A database error occurred. Please try again.").
		WithCause(cause)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap returns err as an AppError, falling back to Internal for foreign errors.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

package errors

import "net/http"

// ErrorCode is the machine-readable code in every error response.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict means the resource is already in the requested state.
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeInvalidCredentials covers unknown login, wrong secret and
	// disabled account alike.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeUnauthorized means the route needs an identity and none was resolved.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden means the identity lacks the role the route requires.
	ErrCodeForbidden   ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

var codeTable = map[ErrorCode]codeInfo{
	ErrCodeNotFound:           {http.StatusNotFound, false},
	ErrCodeAlreadyExists:      {http.StatusConflict, false},
	ErrCodeConflict:           {http.StatusConflict, false},
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, false},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, false},
	ErrCodeForbidden:          {http.StatusForbidden, false},
	ErrCodeRateLimited:        {http.StatusTooManyRequests, true},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, true},
}

// HTTPStatus is the status a code is answered with; unknown codes get 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codeTable[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// IsRetryableCode reports whether a client may retry after code.
// Authentication failures never are.
func IsRetryableCode(code ErrorCode) bool {
	return codeTable[code].retryable
}

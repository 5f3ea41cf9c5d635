package errors

import "maps"

// ErrorResponse is the envelope of every failed request:
//
//	{"error": {"code": "UNAUTHORIZED", "message": "...", "retryable": false}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse renders e for the wire. The cause stays server side.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   maps.Clone(e.Details),
	}}
}

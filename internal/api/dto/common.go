package dto

import "net/http"

// ErrorResponse is the body of every non-2xx response. Detail carries the
// same text as Message for clients that read the "detail" key.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    int    `json:"code"`
}

// NewErrorResponse fills Error from the status text of code.
func NewErrorResponse(code int, message string) ErrorResponse {
	return ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Detail:  message,
		Code:    code,
	}
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
}

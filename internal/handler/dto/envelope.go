// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the failure envelope. Errors is always an object.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// OK wraps data in a success envelope.
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope; nil fields become {}.
func Fail(message string, fields map[string][]string) ErrorResponse {
	if fields == nil {
		fields = map[string][]string{}
	}
	return ErrorResponse{Success: false, Message: message, Errors: fields}
}

// HealthResponse is the root liveness payload. It is not enveloped.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

package dto

import "time"

// StructuredResponse is the envelope every API endpoint returns
type StructuredResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewSuccessResponse creates a standard success envelope
func NewSuccessResponse(data interface{}) StructuredResponse {
	return StructuredResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewMessageResponse creates a success envelope carrying only a message
func NewMessageResponse(message string) StructuredResponse {
	return StructuredResponse{
		Success:   true,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse creates a standard error envelope
func NewErrorResponse(detail ErrorDetail) StructuredResponse {
	return StructuredResponse{
		Success:   false,
		Error:     &detail,
		Timestamp: time.Now(),
	}
}

package httpapi

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Error types reported in ErrorInfo.Type.
const (
	ErrorTypeBadRequest     = "bad_request"
	ErrorTypeNotFound       = "not_found"
	ErrorTypeValidation     = "validation"
	ErrorTypeUpstream       = "upstream"
	ErrorTypeNotImplemented = "not_implemented"
	ErrorTypeInternal       = "internal"
)

func successResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

func errorResponse(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: kind, Message: message},
	})
}

package utils

import "github.com/gin-gonic/gin"

// Response is the JSON envelope of every API endpoint except the gateway
// webhook, which answers in plain text.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NewResponse(status int, message string, data interface{}) Response {
	return Response{
		Status:  status,
		Message: message,
		Data:    data,
	}
}

// NewSuccessResponse wraps data with status 200.
func NewSuccessResponse(message string, data interface{}) Response {
	return NewResponse(200, message, data)
}

func NewErrorResponse(status int, message string) Response {
	return NewResponse(status, message, nil)
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(status, message))
}

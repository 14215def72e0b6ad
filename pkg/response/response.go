package response

import "github.com/gin-gonic/gin"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error sends an error response with the given status code.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// BadRequest sends a 400 bad request response.
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// NotFound sends a 404 not found response.
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// InternalError sends a 500 internal server error response.
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON error body written outside the booking handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler turns a panic in a later handler into a 500 JSON response.
// If the handler already started writing, the panic is only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			GetLogger().Error("unhandled panic",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "An unexpected error occurred. Please try again later.",
			})
		}()
		c.Next()
	}
}

// JSONError aborts the request with status and an ErrorResponse body.
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Debug("request rejected",
		zap.Int("status", status),
		zap.String("route", c.FullPath()),
		zap.String("error", message),
		zap.String("details", details),
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}

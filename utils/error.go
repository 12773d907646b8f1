package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// apiError is the JSON body every non-2xx response carries.
type apiError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// JSONError writes a structured error body and logs it at warn level with the
// request path, so 4xx noise is traceable without tailing access logs.
func JSONError(c *gin.Context, status int, message, details string) {
	GetLogger().Warn(message,
		zap.Int("status", status),
		zap.String("path", c.FullPath()),
		zap.String("details", details))
	c.JSON(status, apiError{Message: message, Details: details})
}

// ErrorHandler recovers from handler panics and turns them into a 500 with a
// structured body instead of tearing down the connection mid-response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
					Message: "internal server error",
					Details: "something went wrong handling the request",
				})
			}
		}()
		c.Next()
	}
}

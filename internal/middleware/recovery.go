package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard/internal/apperr"
)

// Recovery turns a panic into a 500 response and logs it with a stack.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.Stack("stacktrace"),
				)
				abortWithError(c, http.StatusInternalServerError, apperr.KindInternal, "internal server error")
			}
		}()

		c.Next()
	}
}

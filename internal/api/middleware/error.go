package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
)

// ErrorHandlerMiddleware recovers panics and logs errors that handlers
// attached with c.Error. Handlers write their own responses; a 500 is only
// written here when nothing was written yet.
func ErrorHandlerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"panic", rec,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError,
						dto.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred"))
				}
				c.Abort()
			}
		}()

		c.Next()

		for _, err := range c.Errors {
			logger.Error("request failed",
				"error", err.Err,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)
		}

		if len(c.Errors) > 0 && !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError,
				dto.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred"))
		}
	}
}

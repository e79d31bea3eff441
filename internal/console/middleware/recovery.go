package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery converts handler panics into the console's standard error envelope,
// so a crashing request shows the operator the same wording as any other
// unexpected failure. The panic and stack are logged with the request's
// correlation and session ids before the 500 is written.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				correlationID := GetCorrelationID(c)

				fields := []any{
					"error", r,
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				}
				if correlationID != "" {
					fields = append(fields, "correlation_id", correlationID)
				}
				if sessionID := c.Param("id"); sessionID != "" {
					fields = append(fields, "session_id", sessionID)
				}
				logger.Error("Panic recovered", fields...)

				response := gin.H{
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "An unexpected error occurred. Please try again.",
					},
				}
				if correlationID != "" {
					response["correlation_id"] = correlationID
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, response)
			}
		}()

		c.Next()
	}
}

// Package middleware carries the console's cross-cutting gin handlers:
// request correlation, request logging, and panic recovery.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is the HTTP header carrying the request id
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the context key the id is stored under; the
	// response envelope echoes it so operators can quote it in reports
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every console request with an id that ties together the
// request log, the error envelope, and the batch audit trail. An incoming
// X-Correlation-ID is honored only when it parses as a UUID, so arbitrary
// client input never flows into the console's logs.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if _, err := uuid.Parse(correlationID); err != nil {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" when the
// middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}

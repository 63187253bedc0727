package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware tags every request with an id (reusing the caller's
// X-Request-ID when present) and logs one line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		log.Printf("[%s] %s %s -> %d (%s)",
			requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

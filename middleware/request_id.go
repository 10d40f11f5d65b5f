package middleware

import (
	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-Id"
)

// RequestID middleware generates a unique request ID for each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID already exists in header
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(HeaderRequestID, requestID)
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// TraceID propagates an optional caller supplied X-Trace-Id. The header is
// never required and its value is not validated.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			c.Header(HeaderTraceID, traceID)
			c.Set("trace_id", traceID)
			c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		}
		c.Next()
	}
}

// GetRequestID gets the request ID from gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// GetTraceID gets the trace ID from gin context
func GetTraceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

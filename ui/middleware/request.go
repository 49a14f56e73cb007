package middleware

import (
	"net/http"
	"time"

	"qastats/internal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// MaxBodySize caps request bodies at limit bytes
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Logger writes one line per request through the structured logger
func Logger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := logger.With("request_id", c.GetString("request_id")).With("status", c.Writer.Status())
		msg := "%s %s (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, time.Since(start)}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			l.Error(msg, args...)
		case len(c.Errors) > 0:
			l.Warn(msg+": %s", append(args, c.Errors.String())...)
		default:
			l.Debug(msg, args...)
		}
	}
}

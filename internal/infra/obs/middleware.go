package obs

import (
	"log/slog"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Middleware bundles the observability handlers the HTTP server installs.
type Middleware struct {
	Logger *slog.Logger
}

// RequestID propagates the client-supplied request id or mints one, and
// echoes it on the response so callers can correlate logs.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware emits one structured line per request; server errors are
// logged at warn so they stand out in aggregated logs.
func (m Middleware) LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.Logger == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			requestIDKey, c.GetString(requestIDKey),
		}
		if status >= 500 {
			m.Logger.Warn("http request", attrs...)
			return
		}
		m.Logger.Info("http request", attrs...)
	}
}

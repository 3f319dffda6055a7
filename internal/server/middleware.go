// ABOUTME: gin middleware for the audio API
// ABOUTME: Request ids, structured request logs, Prometheus counters and request timeouts
package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/metrics"
)

const (
	requestIDKey = "request_id"
	routeKey     = "route"
)

// requestLogger writes one structured line per request and tags the
// response with an X-Request-ID
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()

		status := c.Writer.Status()
		metrics.RecordHTTPRequest(routeLabel(c), strconv.Itoa(status))

		logging.L().Info("http_request",
			"rid", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// routeLabel returns a low-cardinality route name for metrics
func routeLabel(c *gin.Context) string {
	if r := c.GetString(routeKey); r != "" {
		return r
	}
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// timeout bounds each request's context
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

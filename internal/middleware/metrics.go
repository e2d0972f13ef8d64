// metrics.go records per-request Prometheus metrics.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/telemetry"
)

// MetricsMiddleware returns a Gin handler that records request count and
// latency for every request passing through the router.
//
// The path label is set from c.FullPath(), the matched route template
// (e.g. /api/v1/students/:id) rather than the raw URL. Requests that match
// no registered route use the literal "<no-route>" so unhandled paths do not
// inflate label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

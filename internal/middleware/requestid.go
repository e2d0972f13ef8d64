// Package middleware provides Gin HTTP middleware for the student registry:
// request IDs, Prometheus metrics, security headers, rate limiting, and
// bearer authentication.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Security → RateLimit → Auth → Handler
//
// Rate limiting runs before auth to block brute-force attempts before any
// database work; auth populates the user identity that handlers read.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the canonical HTTP header used to propagate the request identifier.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID string is stored.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware returns a Gin handler that ensures every request
// carries a unique identifier propagated as an X-Request-ID header. An
// inbound header set by an upstream proxy is reused unchanged; otherwise a
// new UUID v4 is generated. The identifier is stored in gin.Context under
// RequestIDKey and echoed back in the response so clients can correlate
// their request with server-side structured log entries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

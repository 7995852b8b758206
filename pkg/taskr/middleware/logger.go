// Package middleware provides gin middleware shared by all taskr routes
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// HeaderRequestID carries the request ID in and out
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the key for the request ID in gin context
	ContextKeyRequestID = "request_id"
	// ContextKeyLogger is the key for the request-scoped logger in gin context
	ContextKeyLogger = "logger"
)

// RequestID assigns every request an ID, reusing a client-supplied one if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one log entry per request and exposes a
// request-scoped logger to handlers via Logger(c)
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithField("request_id", c.GetString(ContextKeyRequestID))
		c.Set(ContextKeyLogger, entry)

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields["user_id"] = userID
		}
		e := entry.WithFields(fields)

		switch {
		case len(c.Errors) > 0:
			e.WithField("errors", c.Errors.String()).Error("request failed")
		case c.Writer.Status() >= 500:
			e.Error("request completed")
		case c.Writer.Status() >= 400:
			e.Warn("request completed")
		default:
			e.Info("request completed")
		}
	}
}

// Logger returns the request-scoped logger, or the standard logrus logger
// when RequestLogger is not installed
func Logger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"atelier/internal/pkg/apperr"
	"atelier/internal/pkg/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps the caller's X-Request-ID or issues a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// ErrorLogger logs request errors and 5xx responses, and recovers from
// panics with an INTERNAL_ERROR body.
func ErrorLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestFields(log, c, start).
					WithError(err).
					WithField("stack", string(debug.Stack())).
					Error("panic recovered")

				response.Fail(c, apperr.Internal(err))
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					requestFields(log, c, start).Error("request failed")
				}
				return
			}

			for _, err := range c.Errors {
				entry := requestFields(log, c, start).WithError(err.Err)
				if c.Writer.Status() >= http.StatusInternalServerError {
					entry.Error("request error")
				} else {
					entry.Warn("request error")
				}
			}
		}()

		c.Next()
	}
}

func requestFields(log logrus.FieldLogger, c *gin.Context, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetInt64("user_id"),
		"role":       c.GetString("role"),
		"request_id": c.GetString("request_id"),
		"latency":    time.Since(start).String(),
	})
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"mobilebill/pkg/logger"
)

// Logger logs one line per request and puts a request-scoped logger on the context.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		reqLog := log.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}
		if status >= 500 {
			reqLog.Errorw("http request", fields...)
			return
		}
		reqLog.Infow("http request", fields...)
	}
}

package middleware

import (
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/logging"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Observe logs every request and records it in the HTTP metrics. Routes are
// labelled by their pattern so IDs do not explode label cardinality.
func Observe(logger logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.RecordHTTPRequest(c.Request.Method, route, status, elapsed)
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Debug("request served", fields...)
		}
	}
}

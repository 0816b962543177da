package middleware

import (
	"strconv"
	"time"

	"memora/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request latency by route template, so
// /api/prompts/:id is one series however many prompts exist.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.Metrics.RequestsInFlight.Inc()
		defer metrics.Metrics.RequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.Metrics.RequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arborhq/arbor/internal/metrics"
)

// PrometheusMiddleware observes request duration and count per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Label with the route pattern, not the raw path, so node IDs
		// don't blow up metric cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(elapsed)
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

package middleware

import (
	"strconv"
	"time"

	"inkwell/cms/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route. The route
// template (not the raw path) keys the series, so IDs do not explode
// label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPDuration.WithLabelValues(
			c.Request.Method, endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"strconv"
	"time"

	"jewelshop/internal/infra"

	"github.com/gin-gonic/gin"
)

// Metrics records the latency of every request by route template. Requests
// that match no route are grouped under "unmatched" to bound cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		infra.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

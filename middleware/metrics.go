package middleware

import (
	"time"

	"toltimed/services/metrics"

	"github.com/gin-gonic/gin"
)

// RequestMetrics records the latency of every request under its route pattern.
func RequestMetrics(m *metrics.BookingMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(started))
	}
}

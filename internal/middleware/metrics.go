package middleware

import (
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		latency := time.Since(start).Milliseconds()

		statusCode := c.Writer.Status()
		success := statusCode < 400

		metrics.Get().IncrementRequests(success, latency)

		// Rotas desconhecidas são agrupadas para não crescer o mapa sem limite
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}

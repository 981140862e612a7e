package middleware

import (
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID
	HeaderTraceID = "X-Trace-ID"

	maxIDLength = 64
)

// quietPaths não geram log de início/fim (sondas de liveness)
var quietPaths = map[string]bool{
	"/health/live": true,
}

// RequestID adiciona request_id e trace_id a cada requisição e registra
// início e fim no logger do contexto
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// IDs vindos de fora são aceitos só se forem seguros para log
		requestID := SanitizeID(c.GetHeader(HeaderRequestID), maxIDLength)
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		traceID := SanitizeID(c.GetHeader(HeaderTraceID), maxIDLength)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		log := logger.Get(ctx)
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int64("content_length", c.Request.ContentLength).
			Msg("Request started")

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		logEvent := log.Info()
		if statusCode >= 400 {
			logEvent = log.Warn()
		}
		if statusCode >= 500 {
			logEvent = log.Error()
		}

		if len(c.Errors) > 0 {
			logEvent = logEvent.Str("errors", c.Errors.String())
		}

		logEvent.
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Float64("latency_ms", float64(duration.Microseconds())/1000).
			Msg("Request completed")
	}
}

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/cache"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/websocket"
	"github.com/gin-gonic/gin"
)

// maxHeapMB é o limite de memória considerado saudável
const maxHeapMB = 512

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	exports        *cache.Cache[[]byte]
	exportCapacity int
	wsHub          *websocket.Hub
	version        string
	startTime      time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(exports *cache.Cache[[]byte], exportCapacity int, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		exports:        exports,
		exportCapacity: exportCapacity,
		wsHub:          wsHub,
		version:        version,
		startTime:      time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Description Returns basic liveness status for Kubernetes probes
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Description Returns memory, export store and websocket status
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := make(map[string]metrics.HealthStatus)

	components["memory"] = metrics.CheckMemoryHealth(maxHeapMB)

	if h.exports != nil {
		components["export_store"] = metrics.CheckExportStoreHealth(h.exports.Size(), h.exportCapacity)
	}

	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}

	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkWebSocketHealth compara as sessões abertas com o limite do hub
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	count := h.wsHub.GetConnectionCount()
	limit := h.wsHub.MaxConnections()

	if count >= limit {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "limite de sessões websocket atingido",
		}
	}
	if limit > 0 && count*10 >= limit*8 {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "sessões websocket próximas do limite",
		}
	}

	if stale := h.wsHub.StaleSessions(websocket.StaleAfter); stale > 0 {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: fmt.Sprintf("%d sessões sem pong há mais de %s", stale, websocket.StaleAfter),
		}
	}

	return metrics.HealthStatus{
		Status: "healthy",
	}
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Description Returns request, estimate, export, upload and websocket counters
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	resp := gin.H{
		"metrics": snapshot,
	}
	if h.exports != nil {
		resp["export_store"] = h.exports.Stats()
	}

	c.JSON(http.StatusOK, resp)
}

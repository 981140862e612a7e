package handler

import (
	"net/http"
	"runtime"

	"github.com/cleberrangel/calculadora-tempos/internal/middleware"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/cleberrangel/calculadora-tempos/internal/websocket"
	"github.com/gin-gonic/gin"
)

// RouterDeps reúne as dependências das rotas
type RouterDeps struct {
	Version         string
	TokenAPI        string
	RateLimitPerMin int
	MaxInputBytes   int64
	ExportCapacity  int
	EstimateService *service.EstimateService
	UploadService   *service.UploadService
	Hub             *websocket.Hub
}

// NewRouter monta o engine gin com middlewares e rotas
func NewRouter(deps RouterDeps) *gin.Engine {
	estimateHandler := NewEstimateHandler(deps.EstimateService)
	uploadHandler := NewUploadHandler(deps.UploadService, deps.EstimateService)
	healthHandler := NewHealthHandler(deps.EstimateService.ExportStore(), deps.ExportCapacity, deps.Hub, deps.Version)

	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	// Rotas públicas
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/metrics", healthHandler.GetMetrics)

	r.GET("/debug/memory", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(http.StatusOK, gin.H{
			"alloc_mb":      m.Alloc / 1024 / 1024,
			"sys_mb":        m.Sys / 1024 / 1024,
			"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
			"heap_inuse_mb": m.HeapInuse / 1024 / 1024,
			"goroutines":    runtime.NumGoroutine(),
			"gc_runs":       m.NumGC,
		})
	})

	limiter := middleware.NewRateLimiter(deps.RateLimitPerMin)

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(websocket.TokenFromQuery())
	api.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: deps.TokenAPI,
	}))
	api.Use(limiter.Middleware())
	{
		api.GET("/components", estimateHandler.ListComponents)
		api.GET("/presets", estimateHandler.ListPresets)

		// O corpo JSON carrega o texto colado; a folga cobre o envelope
		body := api.Group("")
		body.Use(limitBody(deps.MaxInputBytes * 2))
		body.POST("/estimates", estimateHandler.CreateEstimate)
		body.POST("/estimates/export", estimateHandler.ExportEstimate)

		api.POST("/estimates/upload", uploadHandler.UploadTable)
		api.GET("/exports/:id", estimateHandler.DownloadExport)

		if deps.Hub != nil {
			api.GET("/ws", deps.Hub.ServeWS)
		}
	}

	return r
}

// limitBody corta corpos maiores que n bytes
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

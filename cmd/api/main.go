package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/cache"
	"github.com/cleberrangel/calculadora-tempos/internal/config"
	"github.com/cleberrangel/calculadora-tempos/internal/handler"
	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/cleberrangel/calculadora-tempos/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("weight_policy", string(cfg.WeightPolicy)).
		Str("overlap_policy", string(cfg.OverlapPolicy)).
		Bool("auth", cfg.TokenAPI != "").
		Msg("Calculadora de Tempos iniciando")

	metrics.Init()

	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.PresetsFile).Msg("Erro ao carregar presets de pesos")
	}
	if _, err := presets.Get(cfg.DefaultPreset); err != nil {
		log.Fatal().Err(err).Msg("DEFAULT_PRESET não existe")
	}
	log.Info().Strs("presets", presets.Names()).Str("default", cfg.DefaultPreset).Msg("Presets carregados")

	// Inicializa dependências
	exports := cache.NewCache[[]byte](cfg.ExportMaxEntries, cfg.ExportTTL)
	estimateService := service.NewEstimateService(cfg, presets, exports)
	uploadService := service.NewUploadService()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(estimateService, cfg.MaxInputBytes)
	go hub.Run(ctx)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.RouterDeps{
		Version:         Version,
		TokenAPI:        cfg.TokenAPI,
		RateLimitPerMin: cfg.RateLimitPerMinute,
		MaxInputBytes:   cfg.MaxInputBytes,
		ExportCapacity:  cfg.ExportMaxEntries,
		EstimateService: estimateService,
		UploadService:   uploadService,
		Hub:             hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no encerramento do servidor")
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// TokenAPI protege /api/v1 quando preenchido. Aceita token puro ou hash bcrypt.
	TokenAPI string

	PresetsFile   string
	DefaultPreset string
	WeightPolicy  engine.WeightPolicy
	OverlapPolicy engine.OverlapPolicy

	ExportFilename   string
	ExportTTL        time.Duration
	ExportMaxEntries int

	RateLimitPerMinute int
	MaxInputBytes      int64
}

// ErrInvalidValue indica uma variável de ambiente com valor inválido
var ErrInvalidValue = errors.New("valor de configuração inválido")

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TokenAPI:       os.Getenv("TOKEN_API"),
		PresetsFile:    getEnv("PRESETS_FILE", "presets.toml"),
		DefaultPreset:  getEnv("DEFAULT_PRESET", DefaultPresetName),
		ExportFilename: getEnv("EXPORT_FILENAME", "resultado_tempos.xlsx"),
	}

	var err error
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.WeightPolicy, err = engine.ParseWeightPolicy(getEnv("WEIGHT_POLICY", string(engine.WeightLenient))); err != nil {
		return nil, fmt.Errorf("%w: WEIGHT_POLICY: %v", ErrInvalidValue, err)
	}
	if cfg.OverlapPolicy, err = engine.ParseOverlapPolicy(getEnv("OVERLAP_POLICY", string(engine.OverlapLongestFirst))); err != nil {
		return nil, fmt.Errorf("%w: OVERLAP_POLICY: %v", ErrInvalidValue, err)
	}
	if cfg.ExportTTL, err = getDuration("EXPORT_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExportMaxEntries, err = getInt("EXPORT_MAX_ENTRIES", 256, 1); err != nil {
		return nil, err
	}
	// 0 desativa o limite
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 120, 0); err != nil {
		return nil, err
	}
	maxInput, err := getInt("MAX_INPUT_BYTES", 1<<20, 1)
	if err != nil {
		return nil, err
	}
	cfg.MaxInputBytes = int64(maxInput)

	if !strings.HasSuffix(strings.ToLower(cfg.ExportFilename), ".xlsx") {
		return nil, fmt.Errorf("%w: EXPORT_FILENAME deve terminar em .xlsx", ErrInvalidValue)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return b, nil
}

// getInt lê um inteiro >= min
func getInt(key string, fallback, min int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return d, nil
}

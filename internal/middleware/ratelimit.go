package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 1000
	limiterIdleTTL    = 5 * time.Minute
)

// RateLimiter limita requisições por IP de origem
type RateLimiter struct {
	// mu torna o buscar-ou-criar atômico
	mu        sync.Mutex
	limiters  *expirable.LRU[string, *rate.Limiter]
	perMinute int
	burst     int
}

// NewRateLimiter cria um limitador com perMinute requisições por cliente.
// Zero ou negativo desativa o limite.
func NewRateLimiter(perMinute int) *RateLimiter {
	return newRateLimiter(perMinute, limiterIdleTTL)
}

// newRateLimiter descarta o balde de um cliente após idleTTL sem requisições
func newRateLimiter(perMinute int, idleTTL time.Duration) *RateLimiter {
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, idleTTL),
		perMinute: perMinute,
		burst:     burst,
	}
}

// Allow informa se o cliente ainda tem cota
func (r *RateLimiter) Allow(key string) bool {
	if r.perMinute <= 0 {
		return true
	}

	r.mu.Lock()
	limiter, ok := r.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(r.perMinute)/60), r.burst)
	}
	// Add renova o TTL; Get não renova
	r.limiters.Add(key, limiter)
	r.mu.Unlock()

	return limiter.Allow()
}

// Middleware retorna o handler gin do limitador
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "60"
	if r.perMinute > 0 {
		retryAfter = strconv.Itoa(60/r.perMinute + 1)
	}

	return func(c *gin.Context) {
		if r.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.Get().IncrementRateLimited()
		logger.FromGin(c).Warn().Str("client_ip", c.ClientIP()).Msg("Limite de requisições excedido")

		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
			Error: "limite de requisições excedido, tente novamente em instantes",
		})
	}
}

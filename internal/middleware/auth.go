package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig contém a configuração do middleware de autenticação
type AuthConfig struct {
	// TokenAPI pode ser o token puro ou um hash bcrypt ($2a$, $2b$, $2y$).
	// Vazio desativa a autenticação.
	TokenAPI string
}

// BearerAuth retorna um middleware que valida o token Bearer
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	hashed := isBcryptHash(cfg.TokenAPI)

	return func(c *gin.Context) {
		if cfg.TokenAPI == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "header Authorization ausente",
			})
			return
		}

		// Extrai o token do formato "Bearer {token}"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "formato inválido, esperado: Bearer {token}",
			})
			return
		}

		token := strings.TrimSpace(parts[1])

		if !tokenMatches(cfg.TokenAPI, token, hashed) {
			logger.FromGin(c).Warn().Str("client_ip", c.ClientIP()).Msg("Token inválido")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "token inválido",
			})
			return
		}

		c.Next()
	}
}

func tokenMatches(expected, token string, hashed bool) bool {
	if hashed {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}

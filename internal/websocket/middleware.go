package websocket

import "github.com/gin-gonic/gin"

// QueryTokenParam é o parâmetro usado pelo navegador, que não consegue
// enviar headers no handshake websocket
const QueryTokenParam = "token"

// TokenFromQuery copia ?token= para o header Authorization quando ele não
// veio. Deve rodar antes do BearerAuth.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query(QueryTokenParam); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

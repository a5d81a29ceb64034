package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/paygate/pkg/response"
	"github.com/fatflowers/paygate/pkg/types"
)

// ApiKeyMiddleware rejects requests whose X-Api-Key does not match one of
// keys. Keys compare case-insensitively.
func ApiKeyMiddleware(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(types.HeaderApiKey)
		if key != "" {
			for _, k := range keys {
				if strings.EqualFold(k, key) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing or invalid api key"))
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

const codeUnauthorized = "unauthorized"

// Auth validates the bearer token in the Authorization header and sets
// userID in the Gin context on success.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", codeUnauthorized, nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil || claims.UserID == "" {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", codeUnauthorized, nil)
			return
		}
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

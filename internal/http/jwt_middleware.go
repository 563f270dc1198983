package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"forum-account/internal/service"
)

const authUserIDKey = "auth_user_id"

// JWTAuthMiddleware valida el bearer token y guarda el userID en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		userID, err := jwtSvc.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene el userID autenticado desde el contexto.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}

package middleware

import (
	"net/http"
	"time"

	"portfolio-cms/internal/domain/user"
	"portfolio-cms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		if !claims.Authorize(required, time.Now()) {
			utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(user.RoleAdmin)
}

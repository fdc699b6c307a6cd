package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sokoni-app/sokoni-api/models"
)

func RequireAdmin() gin.HandlerFunc {
	return requireRole(models.RoleAdmin)
}

// RequireSeller admits sellers and admins.
func RequireSeller() gin.HandlerFunc {
	return requireRole(models.RoleSeller, models.RoleAdmin)
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userClaims, exists := ctx.Get("user")
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}

		claims := userClaims.(jwt.MapClaims)
		role, ok := claims["role"].(string)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Role missing from token"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}

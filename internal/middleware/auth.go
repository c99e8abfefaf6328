package middleware

import (
	"net/http"
	"strings"

	"sparkmatch/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the Bearer token and stores the caller's user ID in
// the request context under "user_id".
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID set by AuthRequired.
func CurrentUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	id, _ := userID.(uint)
	return id
}

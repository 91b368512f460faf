package middleware

import (
	"net/http"
	"strings"

	"task-secretary-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// UserKey is the context key holding the authenticated user's email.
const UserKey = "user_id"

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Browsers cannot set headers on a WebSocket upgrade
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(UserKey, claims.Email)
		c.Next()
	}
}

// CurrentUser returns the email stored by JWTAuthMiddleware.
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserKey)
}

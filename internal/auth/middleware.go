package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flowchain/flowchain/internal/models"
)

const claimsKey = "authClaims"

// Middleware checks for a valid session token in the cookie or the
// Authorization header and stores its claims on the request context.
func Middleware(tokens *TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		if cookie, err := c.Cookie(cookieName); err == nil {
			tokenStr = cookie
		} else if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects requests whose session is not an admin. Must run after
// Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user's claims, or nil outside an
// authenticated request.
func CurrentUser(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

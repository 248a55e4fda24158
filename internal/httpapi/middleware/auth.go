package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/auth"
	"reviewhub/internal/permissions"
)

const actorKey = "actor"

// ResolveActor attaches the request's actor to the context. No header
// means an anonymous actor; open reads still pass through here. A header
// that is present but malformed or unverifiable is rejected outright.
func ResolveActor(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, permissions.Anonymous())
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			c.Abort()
			return
		}

		c.Set(actorKey, permissions.Actor{
			ID:            claims.UserID,
			Username:      claims.Username,
			Role:          claims.Role,
			Authenticated: true,
		})
		c.Next()
	}
}

// GetActor returns the actor set by ResolveActor, or anonymous when the
// middleware did not run.
func GetActor(c *gin.Context) permissions.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return permissions.Anonymous()
	}
	actor, ok := value.(permissions.Actor)
	if !ok {
		return permissions.Anonymous()
	}
	return actor
}

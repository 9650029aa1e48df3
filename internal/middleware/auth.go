package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meetbase/internal/auth"
	"meetbase/internal/policy"
)

const claimsKey = "claims"

// RequireAuth parses the bearer token and places its claims in the
// request context. A missing or non-Bearer header is 401; a malformed,
// expired, or badly signed token is 403.
func RequireAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		claims, err := auth.ParseToken(parts[1], key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the token claims set by RequireAuth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// ActorFrom shapes the claims into a policy actor.
func ActorFrom(c *gin.Context) (policy.Actor, bool) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return policy.Actor{}, false
	}
	return policy.Actor{ID: claims.UserID, Role: claims.Role}, true
}

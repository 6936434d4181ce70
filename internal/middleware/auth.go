package middleware

import (
	"net/http"
	"strings"

	"preparedness-service/internal/models"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// Identity is the authenticated caller, resolved from the bearer token.
type Identity struct {
	UserID string
	Role   string
	Name   string
	Email  string
}

// Auth parses the Authorization bearer token and stores the caller's
// identity on the request context. Requests without a valid token are
// rejected.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization token required",
			})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(identityKey, Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
			Name:   claims.Name,
			Email:  claims.Email,
		})
		c.Next()
	}
}

// RequireRole allows the request through only when the caller holds one
// of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization token required",
			})
			return
		}
		for _, role := range roles {
			if id.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "insufficient permissions",
		})
	}
}

// CallerFrom returns the identity Auth stored on the context.
func CallerFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// IsAdmin reports whether the identity carries the platform admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

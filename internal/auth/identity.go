package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The upstream gateway authenticates the caller and forwards their identity
// in these headers. This service never parses credentials itself.
const (
	userIDHeader   = "X-User-ID"
	userNameHeader = "X-User-Name"

	identityKey = "auth.identity"
)

// Identity is the authenticated caller of a request. Every record read or
// written is scoped to Identity.UserID.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

// IdentityMiddleware extracts the caller identity set by the gateway and
// rejects requests that lack one.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "missing user identity",
			})
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "invalid user identity",
			})
			return
		}

		c.Set(identityKey, Identity{
			UserID: userID,
			Name:   c.GetHeader(userNameHeader),
		})
		c.Next()
	}
}

// FromContext returns the caller identity stored by IdentityMiddleware.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

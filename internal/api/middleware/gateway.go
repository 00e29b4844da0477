package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
)

const anonymousUser = "anonymous"

// Auth picks the identity middleware for the configured AUTH_MODE.
func Auth(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsGatewayMode() {
		return GatewayAuth()
	}
	return NoAuth()
}

// NoAuth is a pass-through middleware for AUTH_MODE=none.
// Requests are attributed to an anonymous user for logging.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", anonymousUser)
		c.Next()
	}
}

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Role).
// The upstream gateway validates credentials; this service only records who
// asked. Use it ONLY behind a gateway with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_role", c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// UserID returns the identity attached by Auth.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString("user_id")
	return id, id != ""
}

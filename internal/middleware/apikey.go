package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
)

// RelayKeyHeader carries the shared key between the api and the relay.
const RelayKeyHeader = "X-Relay-Key"

// APIKey rejects requests whose X-Relay-Key does not match key. An empty key
// disables the check; cmd/relay refuses to start that way in production.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		got := c.GetHeader(RelayKeyHeader)
		if got == "" {
			response.Unauthorized(c, "Relay key required", "AUTH_REQUIRED")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.Unauthorized(c, "Invalid relay key", "INVALID_RELAY_KEY")
			c.Abort()
			return
		}

		c.Next()
	}
}

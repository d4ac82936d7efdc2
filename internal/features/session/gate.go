package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
)

const (
	CookieName = "civicguard_session"
	contextKey = "session"
)

// Gate lets a request through only with an active session. Browsers are
// redirected to loginPath, API clients get 401. The protected handler does
// not run in either case.
func Gate(m *Manager, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token != "" {
			if sess, err := m.Current(token); err == nil {
				c.Set(contextKey, sess)
				c.Set("userID", sess.User.ID)
				c.Next()
				return
			}
		}

		if wantsHTML(c) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		response.Unauthorized(c, "Sign in required", "AUTH_REQUIRED")
		c.Abort()
	}
}

// FromContext returns the session the gate attached to the request.
func FromContext(c *gin.Context) (*Session, bool) {
	val, exists := c.Get(contextKey)
	if !exists {
		return nil, false
	}
	sess, ok := val.(*Session)
	return sess, ok
}

func tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

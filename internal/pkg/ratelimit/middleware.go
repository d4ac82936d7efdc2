package ratelimit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
	"github.com/ulule/limiter/v3"
)

// Middleware limits requests per client IP.
func Middleware(l *limiter.Limiter) gin.HandlerFunc {
	return CustomKeyMiddleware(l, nil)
}

// CustomKeyMiddleware limits requests per key. An empty key (or nil keyFunc)
// falls back to the client IP.
func CustomKeyMiddleware(l *limiter.Limiter, keyFunc func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = keyFunc(c)
		}
		if key == "" {
			key = c.ClientIP()
		}

		lctx, err := l.Get(c.Request.Context(), key)
		if err != nil {
			// A broken limiter store must not take the endpoint down with it.
			logger.Component("ratelimit").WithError(err).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		resetTime := time.Unix(lctx.Reset, 0)
		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if lctx.Reached {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.TooManyRequests(c, gin.H{
				"retry_after": strconv.Itoa(retryAfter) + "s",
				"reset_time":  resetTime.Format(time.RFC3339),
				"limit":       lctx.Limit,
				"remaining":   lctx.Remaining,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}


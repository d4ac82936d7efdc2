package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/muhammedshamil8/CivicGuard/internal/config"
	"github.com/muhammedshamil8/CivicGuard/internal/features/relay"
	"github.com/muhammedshamil8/CivicGuard/internal/features/reports"
	"github.com/muhammedshamil8/CivicGuard/internal/features/review"
	"github.com/muhammedshamil8/CivicGuard/internal/features/session"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/ratelimit"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
)

// Dependencies are the services the api binary exposes over HTTP.
type Dependencies struct {
	Config   *config.Config
	Store    reports.Store
	Reports  *reports.Service
	Review   *review.Service
	Sessions *session.Manager
	Limits   limiter.Store
}

// SetupRoutes registers health and every feature of the api binary. Client IPs
// for rate limiting come from X-Forwarded-For only when the peer is one of
// cfg.TrustedProxies.
func SetupRoutes(router *gin.Engine, deps Dependencies) error {
	cfg := deps.Config
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return err
	}

	submitLimiter, err := ratelimit.New(deps.Limits, cfg.RateLimitSubmit)
	if err != nil {
		return err
	}
	loginLimiter, err := ratelimit.New(deps.Limits, cfg.RateLimitLogin)
	if err != nil {
		return err
	}

	router.GET("/health", health(deps.Store, deps.Sessions))

	api := router.Group("/api/v1")
	gate := session.Gate(deps.Sessions, cfg.LoginPath)

	reports.RegisterRoutes(api, deps.Reports, ratelimit.Middleware(submitLimiter))
	session.RegisterRoutes(api, deps.Sessions, gate, ratelimit.Middleware(loginLimiter), cfg.IsProduction())
	review.RegisterRoutes(api, deps.Review, gate)

	return nil
}

// SetupRelayRoutes registers the notification relay surface.
func SetupRelayRoutes(router *gin.Engine, svc *relay.Service, cfg *config.Config, limits limiter.Store) error {
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return err
	}
	l, err := ratelimit.New(limits, cfg.RateLimitRelay)
	if err != nil {
		return err
	}
	relay.RegisterRoutes(router, svc, cfg.RelayAPIKey, ratelimit.Middleware(l))
	return nil
}

func health(store reports.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		storeStatus := "ok"
		if err := store.Ping(ctx); err != nil {
			status = "degraded"
			storeStatus = "unreachable"
		}

		data := map[string]interface{}{
			"status":          status,
			"store":           storeStatus,
			"active_sessions": sessions.Active(),
			"time":            time.Now().Unix(),
		}
		if status != "ok" {
			response.ErrorWithData(c, http.StatusServiceUnavailable, "Store unreachable", "STORE_UNAVAILABLE", data)
			return
		}
		response.Success(c, data)
	}
}

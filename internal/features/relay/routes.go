package relay

import (
	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/middleware"
)

// RegisterRoutes mounts the relay surface. The two side-effecting routes sit
// behind the shared key and the rate limit.
func RegisterRoutes(router gin.IRouter, service *Service, apiKey string, limit gin.HandlerFunc) {
	handler := NewHandler(service)

	router.GET("/", handler.Hello)

	guarded := router.Group("/")
	if limit != nil {
		guarded.Use(limit)
	}
	guarded.Use(middleware.APIKey(apiKey))
	{
		guarded.POST("/alert", handler.Alert)
		guarded.POST("/send-email", handler.SendEmail)
	}
}

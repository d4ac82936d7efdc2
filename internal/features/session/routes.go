package session

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, manager *Manager, gate, loginLimit gin.HandlerFunc, secureCookie bool) {
	handler := NewHandler(manager, secureCookie)

	auth := router.Group("/auth")
	{
		if loginLimit != nil {
			auth.POST("/login", loginLimit, handler.Login)
		} else {
			auth.POST("/login", handler.Login)
		}
		auth.POST("/logout", gate, handler.Logout)
		auth.GET("/me", gate, handler.Me)
	}
}

package review

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the admin endpoints behind gate.
func RegisterRoutes(router *gin.RouterGroup, service *Service, gate gin.HandlerFunc) {
	handler := NewHandler(service)

	admin := router.Group("/admin")
	admin.Use(gate)
	{
		admin.GET("/reports", handler.ListReports)
		admin.GET("/reports/stats", handler.GetStats)
		admin.GET("/reports/:id", handler.GetReport)
		admin.POST("/reports/:id/confirm", handler.ConfirmReport)
		admin.POST("/reports/:id/reject", handler.RejectReport)
		admin.POST("/reports/:id/blacklist", handler.BlacklistReport)
		admin.GET("/blacklist", handler.ListBlacklisted)
	}
}

package reports

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public reporter endpoints. submitLimit guards
// the write path; pass nil to leave it unlimited.
func RegisterRoutes(router *gin.RouterGroup, service *Service, submitLimit gin.HandlerFunc) {
	handler := NewHandler(service)

	group := router.Group("/reports")
	{
		if submitLimit != nil {
			group.POST("", submitLimit, handler.SubmitReport)
		} else {
			group.POST("", handler.SubmitReport)
		}
		group.GET("", handler.ListReports)
	}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerMessageRoutes(api *gin.RouterGroup, handler *handlers.MessageHandler, requireAuth, requireAdmin gin.HandlerFunc) {
	api.POST("/contact", handler.Create)

	admin := api.Group("/admin/messages", requireAuth, requireAdmin)
	{
		admin.GET("", handler.List)
		admin.POST("/:id/handle", handler.MarkHandled)
	}
}

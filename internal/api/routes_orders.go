package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerOrderRoutes(api *gin.RouterGroup, handler *handlers.OrderHandler, requireAuth, requireAdmin gin.HandlerFunc) {
	orders := api.Group("/orders", requireAuth)
	{
		orders.POST("", handler.Checkout)
		orders.GET("", handler.List)
		orders.GET("/:id", handler.Get)
	}

	admin := api.Group("/admin/orders", requireAuth, requireAdmin)
	{
		admin.GET("", handler.ListAll)
		admin.PATCH("/:id/status", handler.UpdateStatus)
	}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerCartRoutes(api *gin.RouterGroup, handler *handlers.CartHandler, requireAuth gin.HandlerFunc) {
	cart := api.Group("/cart", requireAuth)
	{
		cart.GET("", handler.Get)
		cart.POST("/items", handler.AddItem)
		cart.PATCH("/items/:id", handler.UpdateItem)
		cart.DELETE("/items/:id", handler.RemoveItem)
		cart.DELETE("", handler.Clear)
	}
}

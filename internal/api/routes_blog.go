package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerBlogRoutes(api *gin.RouterGroup, handler *handlers.BlogHandler, requireAuth, requireAdmin gin.HandlerFunc) {
	api.GET("/blog", handler.List)
	api.GET("/blog/:slug", handler.GetBySlug)

	admin := api.Group("/admin/blog", requireAuth, requireAdmin)
	{
		admin.GET("", handler.ListAll)
		admin.POST("", handler.Create)
		admin.PATCH("/:id", handler.Update)
		admin.DELETE("/:id", handler.Delete)
	}
}

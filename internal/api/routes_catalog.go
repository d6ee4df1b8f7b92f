package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerCatalogRoutes(api *gin.RouterGroup, products *handlers.ProductHandler, categories *handlers.CategoryHandler, search *handlers.SearchHandler, requireAuth, requireAdmin gin.HandlerFunc) {
	api.GET("/products", products.List)
	api.GET("/products/:slug", products.GetBySlug)
	api.GET("/categories", categories.List)
	api.GET("/categories/:slug", categories.GetBySlug)
	api.GET("/search", search.Search)

	admin := api.Group("/admin", requireAuth, requireAdmin)
	{
		admin.GET("/products", products.ListAll)
		admin.POST("/products", products.Create)
		admin.PATCH("/products/:id", products.Update)
		admin.DELETE("/products/:id", products.Delete)

		admin.GET("/categories", categories.ListAll)
		admin.POST("/categories", categories.Create)
		admin.PATCH("/categories/:id", categories.Update)
		admin.DELETE("/categories/:id", categories.Delete)
	}
}

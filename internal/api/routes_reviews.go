package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

func registerReviewRoutes(api *gin.RouterGroup, handler *handlers.ReviewHandler, requireAuth gin.HandlerFunc) {
	api.GET("/products/:slug/reviews", handler.ListForProduct)

	reviews := api.Group("/products/:slug/reviews", requireAuth)
	{
		reviews.POST("", handler.Create)
		reviews.DELETE("/:reviewId", handler.Delete)
	}
}

package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/handlers"
)

// pollIntervalHint advertises the refresh cadence clients should use.
func pollIntervalHint(interval time.Duration) gin.HandlerFunc {
	seconds := strconv.Itoa(int(interval / time.Second))
	return func(c *gin.Context) {
		if interval > 0 {
			c.Header("X-Poll-Interval", seconds)
		}
		c.Next()
	}
}

func registerNotificationRoutes(api *gin.RouterGroup, user, admin *handlers.NotificationHandler, pollInterval time.Duration, requireAuth, requireAdmin gin.HandlerFunc) {
	hint := pollIntervalHint(pollInterval)

	userGroup := api.Group("/notifications", requireAuth, hint)
	{
		userGroup.GET("", user.List)
		userGroup.POST("", requireAdmin, user.Create)
		userGroup.PATCH("/read", user.MarkRead)
		userGroup.DELETE("/:id", user.Delete)
		userGroup.DELETE("", user.DeleteMany)
		userGroup.GET("/stream", user.Stream)
	}

	adminGroup := api.Group("/admin/notifications", requireAuth, requireAdmin, hint)
	{
		adminGroup.GET("", admin.List)
		adminGroup.POST("", admin.Create)
		adminGroup.PATCH("/read", admin.MarkRead)
		adminGroup.DELETE("/:id", admin.Delete)
		adminGroup.DELETE("", admin.DeleteMany)
		adminGroup.GET("/stream", admin.Stream)
	}
}

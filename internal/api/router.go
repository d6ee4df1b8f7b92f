package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/app"
	iauth "github.com/mchen88/cartly/internal/auth"
	"github.com/mchen88/cartly/internal/handlers"
	"github.com/mchen88/cartly/internal/media"
	"github.com/mchen88/cartly/internal/middleware"
	"github.com/mchen88/cartly/internal/notifications"
	"github.com/mchen88/cartly/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *notifications.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Metrics.Enabled {
		endpoint := cfg.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Services
	userService, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	categoryService, err := services.NewCategoryService(db)
	if err != nil {
		return nil, err
	}
	imageResolver, err := media.NewHostedResolver(cfg.Uploads.BaseURL)
	if err != nil {
		return nil, err
	}
	productService, err := services.NewProductService(db, services.WithImageResolver(imageResolver))
	if err != nil {
		return nil, err
	}
	reviewService, err := services.NewReviewService(db)
	if err != nil {
		return nil, err
	}
	cartService, err := services.NewCartService(db)
	if err != nil {
		return nil, err
	}
	blogService, err := services.NewBlogService(db)
	if err != nil {
		return nil, err
	}
	searchService, err := services.NewSearchService(db)
	if err != nil {
		return nil, err
	}

	var userNotifications, adminNotifications *services.NotificationService
	if cfg.Features.Notifications.Enabled {
		userScope := services.UserNotificationScope
		if cfg.Features.Notifications.ReadRetention > 0 {
			userScope.Retention = cfg.Features.Notifications.ReadRetention
		}
		userNotifications, err = services.NewNotificationService(db, userScope, hub)
		if err != nil {
			return nil, err
		}
		adminNotifications, err = services.NewNotificationService(db, services.AdminNotificationScope, hub)
		if err != nil {
			return nil, err
		}
	}

	orderService, err := services.NewOrderService(db, userNotifications, adminNotifications)
	if err != nil {
		return nil, err
	}
	messageService, err := services.NewMessageService(db, adminNotifications)
	if err != nil {
		return nil, err
	}

	// Handlers
	authHandler, err := handlers.NewAuthHandler(userService, jwt)
	if err != nil {
		return nil, err
	}
	categoryHandler, err := handlers.NewCategoryHandler(categoryService)
	if err != nil {
		return nil, err
	}
	productHandler, err := handlers.NewProductHandler(productService)
	if err != nil {
		return nil, err
	}
	reviewHandler, err := handlers.NewReviewHandler(reviewService, productService)
	if err != nil {
		return nil, err
	}
	cartHandler, err := handlers.NewCartHandler(cartService)
	if err != nil {
		return nil, err
	}
	orderHandler, err := handlers.NewOrderHandler(orderService)
	if err != nil {
		return nil, err
	}
	blogHandler, err := handlers.NewBlogHandler(blogService)
	if err != nil {
		return nil, err
	}
	messageHandler, err := handlers.NewMessageHandler(messageService)
	if err != nil {
		return nil, err
	}
	searchHandler, err := handlers.NewSearchHandler(searchService)
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(jwt)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api")

	registerAuthRoutes(api, authHandler, requireAuth)
	registerCatalogRoutes(api, productHandler, categoryHandler, searchHandler, requireAuth, requireAdmin)
	registerReviewRoutes(api, reviewHandler, requireAuth)
	registerCartRoutes(api, cartHandler, requireAuth)
	registerOrderRoutes(api, orderHandler, requireAuth, requireAdmin)
	registerMessageRoutes(api, messageHandler, requireAuth, requireAdmin)

	if cfg.Features.Blog.Enabled {
		registerBlogRoutes(api, blogHandler, requireAuth, requireAdmin)
	}

	if cfg.Features.Notifications.Enabled {
		userNotificationHandler, err := handlers.NewNotificationHandler(userNotifications, hub)
		if err != nil {
			return nil, err
		}
		adminNotificationHandler, err := handlers.NewNotificationHandler(adminNotifications, hub)
		if err != nil {
			return nil, err
		}
		registerNotificationRoutes(api, userNotificationHandler, adminNotificationHandler, cfg.Features.Notifications.PollInterval, requireAuth, requireAdmin)
	}

	return r, nil
}

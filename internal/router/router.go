package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/waveline/notification-service/internal/broker"
	"github.com/waveline/notification-service/internal/consumers"
	"github.com/waveline/notification-service/internal/handlers"
	"github.com/waveline/notification-service/internal/middleware"
	"github.com/waveline/notification-service/internal/service"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc *service.NotificationService, registry *broker.ConsumerRegistry, dispatcher *consumers.Dispatcher, jwtSecret string) {
	// Health check - always accessible
	healthHandler := handlers.NewHealthHandler(registry, dispatcher)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(svc)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Preference routes
	preferenceHandler := handlers.NewPreferenceHandler(svc)
	preferenceHandler.RegisterPreferenceRoutes(api)
	log.Println("Preference routes configured.")

	log.Println("All routes configured.")
}

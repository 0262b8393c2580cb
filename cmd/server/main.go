package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/waveline/notification-service/internal/broker"
	"github.com/waveline/notification-service/internal/cache"
	"github.com/waveline/notification-service/internal/consumers"
	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
	"github.com/waveline/notification-service/internal/router"
	"github.com/waveline/notification-service/internal/service"
	"github.com/waveline/notification-service/internal/worker"
	"github.com/waveline/notification-service/pkg/config"
	"github.com/waveline/notification-service/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := db.Postgres.AutoMigrate(&models.NotificationPreferences{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	// Connect to the message broker and declare the exchange topology
	eventBroker, err := broker.Connect(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		log.Fatalf("Failed to connect to message broker: %v", err)
	}
	defer eventBroker.Close()

	publisher, err := broker.NewPublisher(eventBroker, "notification-service")
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}
	defer publisher.Close()

	// --- Initialize repositories and the pipeline ---
	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	profileRepo := repositories.NewMongoSenderProfileRepository(mongoDB)
	preferenceRepo := repositories.NewPostgresPreferenceRepository(db.Postgres)
	notificationCache := cache.NewNotificationCache(db.Redis, cfg.CacheListTTL, cfg.CacheUnreadTTL)

	svc := service.NewNotificationService(notificationRepo, preferenceRepo, profileRepo, notificationCache, publisher)

	// Bind one consumer per routing key
	registry := broker.NewConsumerRegistry(eventBroker)
	dispatcher := consumers.NewDispatcher(svc, profileRepo)
	if err := dispatcher.BindAll(context.Background(), registry); err != nil {
		log.Fatalf("Failed to bind consumers: %v", err)
	}

	// Scheduled retention and profile sweeps
	sweeper := worker.NewSweeper(svc, profileRepo, cfg.RetentionDays, cfg.ProfileRetention, cfg.CleanupSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, svc, registry, dispatcher, cfg.JWTSecret)

	// Validator
	e.Validator = validator.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

package main

import (
	"context"
	"os"

	"watchtower/internal/config"
	"watchtower/internal/database"
	"watchtower/internal/handlers"
	"watchtower/internal/logging"
	"watchtower/internal/metrics"
	"watchtower/internal/monitoring"
	"watchtower/internal/server"
	"watchtower/internal/storage"
	"watchtower/internal/version"
	"watchtower/internal/websocket"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("watchtower")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Watchtower (camera event hub)")

	// Setup monitoring
	build := version.GetInfo()
	healthChecker := monitoring.NewHealthChecker("watchtower", build.Version)
	metricsCollector := monitoring.NewMetricsCollector("watchtower", build.Version, build.GitCommit)

	// Create custom metrics
	serviceMetrics := &metrics.Metrics{
		HubConnections:  metricsCollector.NewGauge("websocket_hub_connections_active", "Active WebSocket observer connections", []string{}),
		HubMessages:     metricsCollector.NewCounter("websocket_hub_messages_total", "WebSocket hub messages", []string{"direction"}),
		EventsCreated:   metricsCollector.NewCounter("events_created_total", "Camera events created", []string{"event_type"}),
		ImagesProcessed: metricsCollector.NewCounter("images_processed_total", "Uploaded images processed", []string{"status"}),
		ImageProcessingSeconds: metricsCollector.NewHistogram("image_processing_duration_seconds",
			"Image metadata extraction duration", []string{}, nil),
	}

	// Connect to the relational store
	dbConfig := database.DefaultConfig()
	dbConfig.URL = config.RequireEnv(config.EnvDatabaseURL)
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to apply database schema")
	}

	// Connect to the document-log store
	mongoConfig := database.DefaultMongoConfig()
	mongoConfig.URI = config.GetEnv(config.EnvMongoURL, mongoConfig.URI)
	mongoConfig.Database = config.GetEnv(config.EnvMongoDatabase, mongoConfig.Database)
	mongoClient := database.MustConnectMongo(mongoConfig, logger)
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	logStore := storage.NewMongoLogStore(mongoClient.Database(mongoConfig.Database))

	// Ensure the upload directory exists
	uploadDir := config.GetEnv(config.EnvUploadDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create upload directory")
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger, serviceMetrics)
	go hub.Run()

	// Initialize handlers
	watchtowerHandlers := handlers.NewWatchtowerHandlers(db, logStore, hub, uploadDir, logger, serviceMetrics)

	// Add health checks
	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("mongo", monitoring.MongoHealthCheck(mongoClient))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		config.EnvDatabaseURL: dbConfig.URL,
		config.EnvMongoURL:    mongoConfig.URI,
	}))

	// Setup router with monitoring and service routes
	router := server.SetupServiceRouter(logger, "watchtower", healthChecker, metricsCollector)
	watchtowerHandlers.RegisterRoutes(router)

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("watchtower", "8080")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}

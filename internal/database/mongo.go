package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"watchtower/internal/logging"
)

// MongoConn represents a MongoDB client connection
type MongoConn = *mongo.Client

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DefaultMongoConfig returns default document store configuration
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "watchtower",
		ConnectTimeout: 10 * time.Second,
	}
}

// ConnectMongo establishes a MongoDB connection with the given configuration
func ConnectMongo(cfg MongoConfig, logger logging.Logger) (MongoConn, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.WithFields(logging.Fields{
		"database": cfg.Database,
	}).Info("Mongo connected")

	return client, nil
}

// MustConnectMongo is like ConnectMongo but exits on error
func MustConnectMongo(cfg MongoConfig, logger logging.Logger) MongoConn {
	client, err := ConnectMongo(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to mongo")
	}
	return client
}

package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"watchtower/internal/models"
)

// EventLogsCollection is the collection holding event log documents
const EventLogsCollection = "event_logs"

// logDocument is the stored shape of an event log. The id is kept as a
// native ObjectID here and exposed to callers as its hex form.
type logDocument struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty"`
	EventID       int                    `bson:"event_id"`
	Objects       []string               `bson:"objects,omitempty"`
	Confidence    *float64               `bson:"confidence,omitempty"`
	ImagePath     string                 `bson:"image_path,omitempty"`
	ImageMetadata *models.ImageMetadata  `bson:"image_metadata,omitempty"`
	Extra         map[string]interface{} `bson:"extra,omitempty"`
	CreatedAt     time.Time              `bson:"created_at"`
}

// MongoLogStore is the MongoDB-backed log store
type MongoLogStore struct {
	collection *mongo.Collection
}

// NewMongoLogStore creates a log store over the given database
func NewMongoLogStore(db *mongo.Database) *MongoLogStore {
	return &MongoLogStore{
		collection: db.Collection(EventLogsCollection),
	}
}

// InsertLog appends a log document, assigning the creation timestamp
func (s *MongoLogStore) InsertLog(ctx context.Context, log models.EventLog) (string, error) {
	doc := logDocument{
		EventID:       log.EventID,
		Objects:       log.Objects,
		Confidence:    log.Confidence,
		ImagePath:     log.ImagePath,
		ImageMetadata: log.ImageMetadata,
		Extra:         log.Extra,
		CreatedAt:     time.Now().UTC(),
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert event log: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id.Hex(), nil
}

// FindLogsByEventID returns all log documents for the event, oldest first
func (s *MongoLogStore) FindLogsByEventID(ctx context.Context, eventID int) ([]models.EventLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query event logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []logDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode event logs: %w", err)
	}

	logs := make([]models.EventLog, 0, len(docs))
	for _, doc := range docs {
		logs = append(logs, models.EventLog{
			ID:            doc.ID.Hex(),
			EventID:       doc.EventID,
			Objects:       doc.Objects,
			Confidence:    doc.Confidence,
			ImagePath:     doc.ImagePath,
			ImageMetadata: doc.ImageMetadata,
			Extra:         doc.Extra,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return logs, nil
}

// Package storage holds the document-log store implementations. Event
// logs are append-only: they are inserted and queried, never updated or
// deleted.
package storage

import (
	"context"

	"watchtower/internal/models"
)

// LogStore is the append/query contract for event log documents
type LogStore interface {
	// InsertLog appends a log document and returns its assigned id.
	// The store assigns the creation timestamp.
	InsertLog(ctx context.Context, log models.EventLog) (string, error)

	// FindLogsByEventID returns all log documents referencing the event,
	// oldest first.
	FindLogsByEventID(ctx context.Context, eventID int) ([]models.EventLog, error)
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchtower/internal/models"
)

// MemoryLogStore is an in-memory LogStore used by tests and local runs
// without a document store.
type MemoryLogStore struct {
	mu   sync.RWMutex
	logs []models.EventLog
}

// NewMemoryLogStore creates an empty in-memory log store
func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{}
}

// InsertLog appends a log document, assigning an id and timestamp
func (s *MemoryLogStore) InsertLog(_ context.Context, log models.EventLog) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = uuid.NewString()
	log.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, log)
	return log.ID, nil
}

// FindLogsByEventID returns all logs for the event in insertion order
func (s *MemoryLogStore) FindLogsByEventID(_ context.Context, eventID int) ([]models.EventLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]models.EventLog, 0)
	for _, log := range s.logs {
		if log.EventID == eventID {
			matches = append(matches, log)
		}
	}
	return matches, nil
}

// Len returns the total number of stored logs
func (s *MemoryLogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

package storage

import (
	"context"
	"testing"

	"watchtower/internal/models"
)

func TestMemoryLogStoreAppendAndQuery(t *testing.T) {
	store := NewMemoryLogStore()
	ctx := context.Background()

	confidence := 0.87
	firstID, err := store.InsertLog(ctx, models.EventLog{
		EventID:    7,
		Objects:    []string{"person"},
		Confidence: &confidence,
	})
	if err != nil {
		t.Fatalf("InsertLog returned error: %v", err)
	}
	if firstID == "" {
		t.Fatal("expected assigned log id")
	}

	_, err = store.InsertLog(ctx, models.EventLog{
		EventID:   7,
		ImagePath: "uploads/event_7_snap.jpg",
		ImageMetadata: &models.ImageMetadata{
			Width: 640, Height: 480, Brightness: 101.5, EdgePixels: 1234,
		},
	})
	if err != nil {
		t.Fatalf("InsertLog returned error: %v", err)
	}

	if _, err := store.InsertLog(ctx, models.EventLog{EventID: 8}); err != nil {
		t.Fatalf("InsertLog returned error: %v", err)
	}

	logs, err := store.FindLogsByEventID(ctx, 7)
	if err != nil {
		t.Fatalf("FindLogsByEventID returned error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs for event 7, got %d", len(logs))
	}
	if logs[0].ID != firstID {
		t.Fatalf("expected insertion order, first log id %q, got %q", firstID, logs[0].ID)
	}
	if logs[0].CreatedAt.IsZero() {
		t.Fatal("expected store-assigned timestamp")
	}
	if logs[1].ImageMetadata == nil || logs[1].ImageMetadata.EdgePixels != 1234 {
		t.Fatalf("image metadata not preserved: %+v", logs[1].ImageMetadata)
	}

	none, err := store.FindLogsByEventID(ctx, 999)
	if err != nil {
		t.Fatalf("FindLogsByEventID returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no logs for unknown event, got %d", len(none))
	}
}

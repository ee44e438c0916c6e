package models

import "time"

// Camera represents a registered camera
type Camera struct {
	ID        int       `json:"id"`
	Model     string    `json:"model"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Event represents a structured record of something a camera detected
type Event struct {
	ID          int       `json:"id"`
	CameraID    int       `json:"camera_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventWithCamera represents an event joined with its camera details
type EventWithCamera struct {
	EventID     int       `json:"event_id"`
	EventType   string    `json:"event_type"`
	CameraModel string    `json:"camera_model"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventNotification is the realtime message fanned out to connected
// observers after an event is persisted. It carries exactly these three
// fields; consumers needing more query the event by id.
type EventNotification struct {
	EventID   int    `json:"event_id"`
	CameraID  int    `json:"camera_id"`
	EventType string `json:"event_type"`
}

// ImageMetadata is the visual summary computed from an uploaded image
type ImageMetadata struct {
	Width      int     `json:"width" bson:"width"`
	Height     int     `json:"height" bson:"height"`
	Brightness float64 `json:"brightness" bson:"brightness"`
	EdgePixels int     `json:"edge_pixels" bson:"edge_pixels"`
}

// EventLog is an append-only document attached to an event. Two shapes
// share the collection: annotation logs (objects/confidence/extra) and
// image logs (image metadata plus the stored path).
type EventLog struct {
	ID            string                 `json:"log_id" bson:"-"`
	EventID       int                    `json:"event_id" bson:"event_id"`
	Objects       []string               `json:"objects,omitempty" bson:"objects,omitempty"`
	Confidence    *float64               `json:"confidence,omitempty" bson:"confidence,omitempty"`
	ImagePath     string                 `json:"image_path,omitempty" bson:"image_path,omitempty"`
	ImageMetadata *ImageMetadata         `json:"image_metadata,omitempty" bson:"image_metadata,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty" bson:"extra,omitempty"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at"`
}

// CreateCameraRequest is the payload for registering a camera
type CreateCameraRequest struct {
	Model    string `json:"model" binding:"required"`
	Location string `json:"location" binding:"required"`
}

// CreateEventRequest is the payload for creating an event
type CreateEventRequest struct {
	CameraID    int    `json:"camera_id" binding:"required"`
	EventType   string `json:"event_type" binding:"required"`
	Description string `json:"description"`
}

// CreateEventLogRequest is the payload for appending an annotation log
type CreateEventLogRequest struct {
	Objects    []string               `json:"objects"`
	Confidence *float64               `json:"confidence"`
	ImagePath  string                 `json:"image_path"`
	Extra      map[string]interface{} `json:"extra"`
}

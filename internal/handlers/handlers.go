package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"watchtower/internal/database"
	"watchtower/internal/imaging"
	"watchtower/internal/logging"
	"watchtower/internal/metrics"
	"watchtower/internal/models"
	"watchtower/internal/storage"
	"watchtower/internal/version"
)

// Broadcaster is the realtime fan-out surface the ingestion pipeline
// talks to. The hub implements it.
type Broadcaster interface {
	BroadcastEvent(notification models.EventNotification)
	ServeWS(w http.ResponseWriter, r *http.Request)
	GetStats() map[string]interface{}
}

// WatchtowerHandlers contains the HTTP handlers for the service
type WatchtowerHandlers struct {
	db        *sql.DB
	logs      storage.LogStore
	hub       Broadcaster
	uploadDir string
	logger    logging.Logger
	metrics   *metrics.Metrics

	// extract is swappable so pipeline tests do not need image fixtures
	extract func(path string) (models.ImageMetadata, error)
}

// NewWatchtowerHandlers creates a new handlers instance
func NewWatchtowerHandlers(db *sql.DB, logs storage.LogStore, hub Broadcaster, uploadDir string, logger logging.Logger, serviceMetrics *metrics.Metrics) *WatchtowerHandlers {
	return &WatchtowerHandlers{
		db:        db,
		logs:      logs,
		hub:       hub,
		uploadDir: uploadDir,
		logger:    logger,
		metrics:   serviceMetrics,
		extract:   imaging.Extract,
	}
}

// cameraExists resolves the camera id against the relational store,
// returning models.ErrCameraNotFound when it does not exist.
func (h *WatchtowerHandlers) cameraExists(ctx context.Context, id int) error {
	var found int
	err := h.db.QueryRowContext(ctx, `
		SELECT id FROM cameras WHERE id = $1
	`, id).Scan(&found)
	if err == database.ErrNoRows {
		return models.ErrCameraNotFound
	}
	return err
}

// HandleWebSocketEvents serves WebSocket connections for event updates
func (h *WatchtowerHandlers) HandleWebSocketEvents(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

// Status reports service build information and realtime hub statistics
func (h *WatchtowerHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "watchtower",
		"build":     version.GetInfo(),
		"websocket": h.hub.GetStats(),
	})
}

// CreateCamera registers a new camera
func (h *WatchtowerHandlers) CreateCamera(c *gin.Context) {
	var req models.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camera := models.Camera{
		Model:    req.Model,
		Location: req.Location,
	}

	err := h.db.QueryRowContext(c.Request.Context(), `
		INSERT INTO cameras (model, location)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, req.Model, req.Location).Scan(&camera.ID, &camera.CreatedAt)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, camera)
}

// ListCameras returns all registered cameras
func (h *WatchtowerHandlers) ListCameras(c *gin.Context) {
	rows, err := h.db.QueryContext(c.Request.Context(), `
		SELECT id, model, location, created_at
		FROM cameras
		ORDER BY id
	`)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list cameras")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	cameras := make([]models.Camera, 0)
	for rows.Next() {
		var camera models.Camera
		if err := rows.Scan(&camera.ID, &camera.Model, &camera.Location, &camera.CreatedAt); err != nil {
			h.logger.WithError(err).Error("Failed to scan camera row")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		cameras = append(cameras, camera)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Failed to read camera rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, cameras)
}

// CreateEvent persists a new camera event and notifies connected
// observers. The camera reference is validated first; nothing is written
// and nothing is broadcast when it does not resolve. The broadcast happens
// only after the insert commits, so observers are never told about an
// event that is not durably recorded.
func (h *WatchtowerHandlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cameraExists(c.Request.Context(), req.CameraID); err != nil {
		if errors.Is(err, models.ErrCameraNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
		h.logger.WithError(err).WithField("camera_id", req.CameraID).Error("Failed to validate camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	event := models.Event{
		CameraID:    req.CameraID,
		EventType:   req.EventType,
		Description: req.Description,
	}

	err := h.db.QueryRowContext(c.Request.Context(), `
		INSERT INTO events (camera_id, event_type, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, req.CameraID, req.EventType, req.Description).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.hub.BroadcastEvent(models.EventNotification{
		EventID:   event.ID,
		CameraID:  event.CameraID,
		EventType: event.EventType,
	})

	if h.metrics != nil {
		h.metrics.EventsCreated.WithLabelValues(event.EventType).Inc()
	}
	h.logger.WithFields(logging.Fields{
		"event_id":   event.ID,
		"camera_id":  event.CameraID,
		"event_type": event.EventType,
	}).Info("Event created")

	c.JSON(http.StatusCreated, event)
}

// ListEvents returns all events
func (h *WatchtowerHandlers) ListEvents(c *gin.Context) {
	rows, err := h.db.QueryContext(c.Request.Context(), `
		SELECT id, camera_id, event_type, description, created_at
		FROM events
		ORDER BY id
	`)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.CameraID, &event.EventType, &event.Description, &event.CreatedAt); err != nil {
			h.logger.WithError(err).Error("Failed to scan event row")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Failed to read event rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// ListEventsByCamera returns events joined with their camera details
func (h *WatchtowerHandlers) ListEventsByCamera(c *gin.Context) {
	cameraID, err := strconv.Atoi(c.Param("camera_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid camera id"})
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(), `
		SELECT e.id, e.event_type, c.model, c.location, e.created_at
		FROM events e
		JOIN cameras c ON e.camera_id = c.id
		WHERE c.id = $1
		ORDER BY e.id
	`, cameraID)
	if err != nil {
		h.logger.WithError(err).WithField("camera_id", cameraID).Error("Failed to list events by camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	events := make([]models.EventWithCamera, 0)
	for rows.Next() {
		var event models.EventWithCamera
		if err := rows.Scan(&event.EventID, &event.EventType, &event.CameraModel, &event.Location, &event.CreatedAt); err != nil {
			h.logger.WithError(err).Error("Failed to scan joined event row")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Failed to read joined event rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// CreateEventLog appends an annotation document to an event's log. The
// event id is accepted as given; the relational store is not consulted.
func (h *WatchtowerHandlers) CreateEventLog(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	var req models.CreateEventLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logID, err := h.logs.InsertLog(c.Request.Context(), models.EventLog{
		EventID:    eventID,
		Objects:    req.Objects,
		Confidence: req.Confidence,
		ImagePath:  req.ImagePath,
		Extra:      req.Extra,
	})
	if err != nil {
		h.logger.WithError(err).WithField("event_id", eventID).Error("Failed to store event log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event log stored successfully",
		"log_id":  logID,
	})
}

// ListEventLogs returns all log documents for an event
func (h *WatchtowerHandlers) ListEventLogs(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	logs, err := h.logs.FindLogsByEventID(c.Request.Context(), eventID)
	if err != nil {
		h.logger.WithError(err).WithField("event_id", eventID).Error("Failed to query event logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// UploadEventImage saves an uploaded image, extracts its visual metadata
// and appends an image log document. The event id is accepted as given.
// When extraction fails no log document is written, but the saved file
// stays on disk.
func (h *WatchtowerHandlers) UploadEventImage(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}

	// Deterministic path; a re-upload with the same name overwrites
	filename := fmt.Sprintf("event_%d_%s", eventID, filepath.Base(file.Filename))
	path := filepath.Join(h.uploadDir, filename)

	if err := c.SaveUploadedFile(file, path); err != nil {
		h.logger.WithError(err).WithField("path", path).Error("Failed to save uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	start := time.Now()
	metadata, err := h.extract(path)
	if h.metrics != nil {
		h.metrics.ImageProcessingSeconds.WithLabelValues().Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if h.metrics != nil {
			h.metrics.ImagesProcessed.WithLabelValues("decode_error").Inc()
		}
		if errors.Is(err, models.ErrImageDecode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot decode image"})
			return
		}
		h.logger.WithError(err).WithField("path", path).Error("Failed to extract image metadata")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, err = h.logs.InsertLog(c.Request.Context(), models.EventLog{
		EventID:       eventID,
		ImagePath:     path,
		ImageMetadata: &metadata,
	})
	if err != nil {
		h.logger.WithError(err).WithField("event_id", eventID).Error("Failed to store image log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.metrics != nil {
		h.metrics.ImagesProcessed.WithLabelValues("ok").Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Image uploaded and processed",
		"image_metadata": metadata,
	})
}

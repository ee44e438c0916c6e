package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches all service endpoints to the router
func (h *WatchtowerHandlers) RegisterRoutes(router *gin.Engine) {
	router.GET("/status", h.Status)

	router.POST("/cameras", h.CreateCamera)
	router.GET("/cameras", h.ListCameras)

	router.POST("/events", h.CreateEvent)
	router.GET("/events", h.ListEvents)
	router.GET("/events/camera/:camera_id", h.ListEventsByCamera)

	router.POST("/events/:event_id/logs", h.CreateEventLog)
	router.GET("/events/:event_id/logs", h.ListEventLogs)
	router.POST("/events/:event_id/images", h.UploadEventImage)

	router.GET("/ws/events", h.HandleWebSocketEvents)
}

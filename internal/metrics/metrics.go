package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the Watchtower service
type Metrics struct {
	// WebSocket hub metrics
	HubConnections *prometheus.GaugeVec
	HubMessages    *prometheus.CounterVec

	// Ingestion metrics
	EventsCreated          *prometheus.CounterVec
	ImagesProcessed        *prometheus.CounterVec
	ImageProcessingSeconds *prometheus.HistogramVec
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GenerationsTotal counts /generate outcomes: success, demo, failed, invalid.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylelab",
			Subsystem: "generate",
			Name:      "requests_total",
			Help:      "Total generation requests by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stylelab",
			Subsystem: "generate",
			Name:      "provider_duration_seconds",
			Help:      "Outbound provider call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 90, 180},
		},
		[]string{"provider", "status"},
	)

	PersistenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylelab",
			Subsystem: "storage",
			Name:      "persist_total",
			Help:      "Generated image persistence attempts",
		},
		[]string{"status"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylelab",
			Subsystem: "upload",
			Name:      "files_total",
			Help:      "Total uploaded files",
		},
		[]string{"content_type", "status"},
	)

	ProjectMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylelab",
			Subsystem: "projects",
			Name:      "mutations_total",
			Help:      "Project mutations by operation",
		},
		[]string{"operation"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stylelab",
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Connected websocket clients",
		},
	)
)

// RecordGeneration records a /generate outcome
func RecordGeneration(model, outcome string) {
	GenerationsTotal.WithLabelValues(model, outcome).Inc()
}

// RecordProviderCall records an outbound provider call
func RecordProviderCall(provider, status string, durationSec float64) {
	ProviderDuration.WithLabelValues(provider, status).Observe(durationSec)
}

// RecordPersistence records a persistence attempt (success, failed, skipped)
func RecordPersistence(status string) {
	PersistenceTotal.WithLabelValues(status).Inc()
}

// RecordUpload records an upload
func RecordUpload(contentType, status string) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
}

// RecordProjectMutation records a project store mutation
func RecordProjectMutation(operation string) {
	ProjectMutationsTotal.WithLabelValues(operation).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

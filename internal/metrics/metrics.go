// Package metrics exposes Prometheus counters and histograms for the
// firing pipeline and the admin HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics for the admin API surface.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_http_requests_total",
			Help: "Total number of admin API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_http_request_duration_seconds",
			Help:    "Admin API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Firing pipeline metrics.
	firingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_firings_total",
			Help: "Total number of schedule firings, by outcome status",
		},
		[]string{"status"},
	)

	firingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_firing_latency_seconds",
			Help:    "HTTP request latency observed for a firing",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)

	activeSchedules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_active_schedules",
			Help: "Number of jobs registered in the registry, WINDOW stop hooks included",
		},
	)

	registryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_registry_rejections_total",
			Help: "Firings dropped by the registry before dispatch, by reason",
		},
		[]string{"reason"},
	)
)

// Handler serves the Prometheus text exposition format for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordFiring records the outcome and HTTP latency of one firing.
func RecordFiring(status string, latency time.Duration) {
	firingsTotal.WithLabelValues(status).Inc()
	firingLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// SetActiveSchedules reports the current number of registered timers.
func SetActiveSchedules(count int) {
	activeSchedules.Set(float64(count))
}

// RecordRegistryRejection records a firing dropped before it reached the
// executor (paused schedule, misfire grace exceeded, max-instances hit).
func RecordRegistryRejection(reason string) {
	registryRejections.WithLabelValues(reason).Inc()
}

// GinMiddleware instruments every admin API request with request count and
// latency metrics, skipping the metrics and health endpoints themselves.
func GinMiddleware() gin.HandlerFunc {
	skip := map[string]bool{
		"/metrics":      true,
		"/health":       true,
		"/health/live":  true,
		"/health/ready": true,
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" || skip[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "atelier",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atelier",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	artEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "art",
			Name:      "events_total",
			Help:      "Artwork lifecycle and like events.",
		},
		[]string{"event"},
	)

	blobCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "blob",
			Name:      "cleanup_failures_total",
			Help:      "Blob deletions that failed after the artwork row was gone.",
		},
	)
)

const (
	EventUpload         = "upload"
	EventUpdate         = "update"
	EventDelete         = "delete"
	EventLike           = "like"
	EventUnlike         = "unlike"
	EventMasterpieceSet = "masterpiece_set"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		artEvents,
		blobCleanupFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency per matched route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordArtEvent(event string) {
	artEvents.WithLabelValues(event).Inc()
}

func RecordBlobCleanupFailure() {
	blobCleanupFailures.Inc()
}

// Package telemetry exposes Prometheus metrics for the HTTP API, the rule
// snapshot, and the webhook dispatcher.
package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Extractions counts criteria extraction attempts by outcome
	// (ok, missing_property, unbalanced_group).
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "criteria_extractions_total",
			Help: "Criteria extraction attempts by outcome",
		},
		[]string{"outcome"},
	)

	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients",
		Help: "Number of currently connected SSE clients",
	})
	SnapshotRules = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_rules",
		Help: "Number of rules currently in the in-memory snapshot",
	})
	WebhookQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "webhook_queue_depth",
		Help: "Number of events waiting in the webhook dispatch queue",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, Extractions, SSEClients, SnapshotRules, WebhookQueueDepth)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

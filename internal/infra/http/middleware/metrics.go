package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	quotesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotes_computed_total",
			Help: "Total number of quotes computed",
		},
		[]string{"mode", "result"},
	)

	leadsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_enqueued_total",
			Help: "Total number of lead submissions enqueued",
		},
		[]string{"stage"},
	)

	followupEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_emails_total",
			Help: "Total number of follow-up emails attempted",
		},
		[]string{"status"},
	)

	catalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Total number of price catalog reloads",
		},
		[]string{"result"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordQuote labels by mode and outcome ("ok" or the rejection code).
func RecordQuote(mode, result string) {
	quotesComputed.WithLabelValues(mode, result).Inc()
}

func RecordLeadEnqueued(stage string) {
	leadsEnqueued.WithLabelValues(stage).Inc()
}

func RecordFollowupEmail(status string) {
	followupEmails.WithLabelValues(status).Inc()
}

func RecordCatalogReload(result string) {
	catalogReloads.WithLabelValues(result).Inc()
}

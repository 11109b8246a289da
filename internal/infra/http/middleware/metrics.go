package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/leadbridge/internal/usecase"
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

	storeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbridge_store_mutations_total",
			Help: "Total number of applied store mutations",
		},
		[]string{"entity", "op"},
	)

	// RemindersSent counts overdue-task reminders delivered by the reminder worker.
	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadbridge_reminders_sent_total",
			Help: "Total number of overdue task reminders sent",
		},
	)

	eventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbridge_event_publish_errors_total",
			Help: "Total number of change events that could not be delivered",
		},
		[]string{"sink"},
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

// Unwrap lets http.ResponseController reach the hijacker for /ws upgrades.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
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
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels requests by chi pattern ("/api/leads/{id}") so ids do not explode cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// StoreMetrics counts store mutations. It implements usecase.EventPublisher.
type StoreMetrics struct{}

func (StoreMetrics) Publish(ctx context.Context, event usecase.ChangeEvent) error {
	entity, op, ok := strings.Cut(string(event.Type), ".")
	if !ok {
		op = "unknown"
	}
	storeMutations.WithLabelValues(entity, op).Inc()
	return nil
}

// CountPublishErrors wraps p so failed deliveries are counted under sink.
func CountPublishErrors(sink string, p usecase.EventPublisher) usecase.EventPublisher {
	return usecase.PublisherFunc(func(ctx context.Context, event usecase.ChangeEvent) error {
		err := p.Publish(ctx, event)
		if err != nil {
			eventPublishErrors.WithLabelValues(sink).Inc()
		}
		return err
	})
}

// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "food_delivery",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of orders created.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery",
			Subsystem: "progression",
			Name:      "transitions_total",
			Help:      "Scheduled status transitions by target status and result.",
		},
		[]string{"status", "result"},
	)

	progressionsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "food_delivery",
			Subsystem: "progression",
			Name:      "pending",
			Help:      "Orders with at least one scheduled transition left.",
		},
	)

	hubSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "food_delivery",
			Subsystem: "hub",
			Name:      "subscriptions",
			Help:      "Current number of order channel subscriptions.",
		},
	)

	hubEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery",
			Subsystem: "hub",
			Name:      "events_total",
			Help:      "Events handed to subscribers, by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "food_delivery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		ordersCreated,
		statusTransitions,
		progressionsPending,
		hubSubscribers,
		hubEvents,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func OrderCreated() {
	ordersCreated.Inc()
}

// Transition records the outcome of one scheduled step: "applied", "not_found",
// "failed" or "skipped".
func Transition(status, result string) {
	statusTransitions.WithLabelValues(status, result).Inc()
}

func SetPendingProgressions(n int) {
	progressionsPending.Set(float64(n))
}

func SubscriptionAdded() {
	hubSubscribers.Inc()
}

func SubscriptionRemoved() {
	hubSubscribers.Dec()
}

func EventDelivered() {
	hubEvents.WithLabelValues("delivered").Inc()
}

func EventDropped() {
	hubEvents.WithLabelValues("dropped").Inc()
}

// InstrumentHandler is a chi middleware recording request count and latency
// per route pattern.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

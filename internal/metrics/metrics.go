// Package metrics provides Prometheus instrumentation for the game server.
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
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DecisionsTotal counts resolved decisions by type and outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ceosim_decisions_total",
		Help: "Total number of resolved decisions",
	}, []string{"type", "outcome"})

	// DecisionRejections counts submissions refused by the engine.
	DecisionRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceosim_decision_rejections_total",
		Help: "Decision submissions rejected by validation",
	})

	// TurnLatency measures the engine time to resolve one turn.
	TurnLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ceosim_turn_latency_seconds",
		Help:    "Turn resolution latency in seconds, store writes included",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	// GamesStarted counts new games by mode.
	GamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ceosim_games_started_total",
		Help: "Total number of games started",
	}, []string{"mode"})

	// GamesCompleted counts finished games by ranking and completion reason.
	GamesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ceosim_games_completed_total",
		Help: "Total number of games completed",
	}, []string{"ranking", "reason"})

	// ActiveGames tracks games in the playing state on this node.
	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ceosim_active_games",
		Help: "Number of games currently in progress",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ceosim_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ceosim_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ceosim_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Game ids would explode cardinality; label by route pattern.
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes through to the underlying writer for WebSocket upgrades.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

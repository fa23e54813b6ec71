package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
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
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Dispatch board metrics
	casesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_cases_created_total",
			Help: "Total number of emergency cases created",
		},
		[]string{"priority"},
	)

	ambulanceDispatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_ambulance_dispatches_total",
			Help: "Total number of ambulance dispatches",
		},
	)

	phaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_phase_transitions_total",
			Help: "Total number of mission phase transitions",
		},
		[]string{"from_phase", "to_phase"},
	)

	missionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_missions_closed_total",
			Help: "Total number of missions closed",
		},
		[]string{"outcome"},
	)

	activeMissions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_active_missions",
			Help: "Number of missions currently in progress",
		},
	)

	simulatorTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_simulator_ticks_total",
			Help: "Total number of position simulator ticks",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordCaseCreated records an emergency case creation
func RecordCaseCreated(priority string) {
	casesCreated.WithLabelValues(priority).Inc()
}

// RecordDispatch records an ambulance dispatch
func RecordDispatch() {
	ambulanceDispatches.Inc()
}

// RecordPhaseTransition records a mission phase transition
func RecordPhaseTransition(from, to string) {
	phaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordMissionClosed records a mission closure, outcome is "finalized" or "cancelled"
func RecordMissionClosed(outcome string) {
	missionsClosed.WithLabelValues(outcome).Inc()
}

// SetActiveMissions records the number of missions currently in progress
func SetActiveMissions(count int) {
	activeMissions.Set(float64(count))
}

// RecordSimulatorTick records one pass of the position simulator
func RecordSimulatorTick() {
	simulatorTicks.Inc()
}

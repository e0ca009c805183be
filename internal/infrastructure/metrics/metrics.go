// Package metrics exposes the Prometheus instruments of the API process.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meeting_quality_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Meeting workflow
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_submissions_total",
			Help: "Accepted ledger submissions by phase",
		},
		[]string{"phase"},
	)

	PhaseChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_phase_changes_total",
			Help: "Phase changes announced to realtime subscribers, by target phase",
		},
		[]string{"phase"},
	)

	ActivationSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_activation_sweeps_total",
			Help: "Activation sweep runs by result",
		},
		[]string{"result"}, // "success", "error"
	)

	ActivationSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meeting_quality_activation_sweep_duration_seconds",
			Help:    "Duration of an activation sweep in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	MeetingsActivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_quality_meetings_activated_total",
			Help: "Upcoming meetings switched to active by the sweep",
		},
	)

	// Realtime
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meeting_quality_ws_connections",
			Help: "Open realtime connections on this instance",
		},
	)

	WSRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meeting_quality_ws_rooms",
			Help: "Meeting rooms with at least one subscribed connection on this instance",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_ws_messages_received_total",
			Help: "Inbound realtime messages by event",
		},
		[]string{"event"},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_ws_messages_sent_total",
			Help: "Outbound realtime messages by event",
		},
		[]string{"event"},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_ws_messages_dropped_total",
			Help: "Outbound realtime messages dropped because the client buffer was full",
		},
		[]string{"event"},
	)

	WSRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_quality_ws_rate_limited_total",
			Help: "Inbound realtime messages discarded by the per-connection limiter",
		},
	)

	WSAuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_ws_auth_failures_total",
			Help: "Rejected realtime handshakes by reason",
		},
		[]string{"reason"}, // "missing_token", "invalid_token"
	)

	RosterSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meeting_quality_roster_size",
			Help:    "Live roster size observed on every presence change",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	PubSubMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_pubsub_messages_total",
			Help: "Cross-instance event bus traffic by direction and result",
		},
		[]string{"direction", "result"}, // direction: "publish", "receive", "subscribe"
	)

	// Report storage
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_quality_storage_operations_total",
			Help: "Report storage operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meeting_quality_storage_operation_duration_seconds",
			Help:    "Report storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meeting_quality_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSubmission counts an accepted ledger submission.
func RecordSubmission(phase string) {
	SubmissionsTotal.WithLabelValues(phase).Inc()
}

// RecordPhaseChange counts a phase change announcement.
func RecordPhaseChange(phase string) {
	PhaseChangesTotal.WithLabelValues(phase).Inc()
}

// RecordWSMessageReceived counts an inbound realtime message.
func RecordWSMessageReceived(event string) {
	WSMessagesReceived.WithLabelValues(event).Inc()
}

// RecordWSMessageSent counts an outbound realtime message.
func RecordWSMessageSent(event string) {
	WSMessagesSent.WithLabelValues(event).Inc()
}

// RecordWSMessageDropped counts an outbound message that could not be queued.
func RecordWSMessageDropped(event string) {
	WSMessagesDropped.WithLabelValues(event).Inc()
}

// RecordWSAuthFailure counts a rejected handshake.
func RecordWSAuthFailure(reason string) {
	WSAuthFailures.WithLabelValues(reason).Inc()
}

// RecordPubSub counts a cross-instance bus message.
func RecordPubSub(direction string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PubSubMessages.WithLabelValues(direction, result).Inc()
}

// RecordStorageOperation records a report storage call.
func RecordStorageOperation(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(operation, result).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetCircuitBreakerState publishes a breaker state as 0 (closed), 1 (half-open) or 2 (open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// SweepRecorder adapts the package instruments to the activation sweeper.
type SweepRecorder struct{}

// SweepCompleted records one sweep run.
func (SweepRecorder) SweepCompleted(activated int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ActivationSweepsTotal.WithLabelValues(result).Inc()
	ActivationSweepDuration.Observe(duration.Seconds())
	if activated > 0 {
		MeetingsActivatedTotal.Add(float64(activated))
	}
}

// EchoMiddleware records request count and latency per route template.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RecordAPIRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}

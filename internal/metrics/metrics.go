package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "noticeboard"

// Metrics holds all application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportsCreatedTotal    *prometheus.CounterVec
	TargetsRemovedTotal    *prometheus.CounterVec
	ModerationActionsTotal *prometheus.CounterVec
	ReactionsToggledTotal  *prometheus.CounterVec
	DanglingReportsSwept   prometheus.Counter

	logger *zap.Logger
}

// New registers the collectors with the default registry.
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry registers the collectors with registerer.
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		ReportsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_created_total",
				Help:      "Total number of reports filed",
			},
			[]string{"target_type"},
		),
		TargetsRemovedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_targets_removed_total",
				Help:      "Total number of reported targets removed, with the reports swept alongside",
			},
			[]string{"target_type"},
		),
		ModerationActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_actions_total",
				Help:      "Total number of moderation actions recorded",
			},
			[]string{"action"},
		),
		ReactionsToggledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reactions_toggled_total",
				Help:      "Total number of reaction toggles",
			},
			[]string{"type", "result"},
		),
		DanglingReportsSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dangling_reports_swept_total",
				Help:      "Total number of reports removed because their target no longer exists",
			},
		),
		logger: logger,
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, categorizeStatus(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

func (m *Metrics) IncReportCreated(targetType string) {
	m.safeExecute("IncReportCreated", func() {
		m.ReportsCreatedTotal.WithLabelValues(targetType).Inc()
	})
}

func (m *Metrics) IncTargetRemoved(targetType string) {
	m.safeExecute("IncTargetRemoved", func() {
		m.TargetsRemovedTotal.WithLabelValues(targetType).Inc()
	})
}

func (m *Metrics) IncModerationAction(action string) {
	m.safeExecute("IncModerationAction", func() {
		m.ModerationActionsTotal.WithLabelValues(action).Inc()
	})
}

// IncReactionToggled records a toggle; result is "added", "removed" or "switched".
func (m *Metrics) IncReactionToggled(reactionType, result string) {
	m.safeExecute("IncReactionToggled", func() {
		m.ReactionsToggledTotal.WithLabelValues(reactionType, result).Inc()
	})
}

func (m *Metrics) AddDanglingReportsSwept(n int) {
	m.safeExecute("AddDanglingReportsSwept", func() {
		m.DanglingReportsSwept.Add(float64(n))
	})
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint reports whether path is excluded from HTTP metrics.
func ShouldSkipEndpoint(path string) bool {
	return path == "/metrics" || path == "/healthz"
}

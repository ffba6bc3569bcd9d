// Package metrics provides Prometheus metrics for lapreplay.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Discard reasons for TagSeen events that never reach the last-pass table.
const (
	ReasonNotStarted = "not_started"
	ReasonUnassigned = "unassigned"
)

// Manager owns the metric vectors for one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Reconstruction
	eventsTotal        *prometheus.CounterVec
	sightingsDiscarded *prometheus.CounterVec
	readsDebounced     prometheus.Counter
	passesAccepted     prometheus.Counter
	assignedTags       prometheus.Gauge
	replayRuns         *prometheus.CounterVec
	replayDuration     prometheus.Histogram

	// Tooling
	filterLines   *prometheus.CounterVec
	importItems   prometheus.Counter
	exportObjects *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of the output

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lapreplay",
		subsystem:        "replay",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.eventsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Log events consumed by the reconstructor, by event type",
	}, []string{"type"})

	m.sightingsDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sightings_discarded_total",
		Help:      "TagSeen events dropped before reaching a pair",
	}, []string{"reason"})

	m.readsDebounced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reads_debounced_total",
		Help:      "Sightings within the debounce threshold of the pair's reference time",
	})

	m.passesAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "passes_accepted_total",
		Help:      "Sightings accepted as a new pass",
	})

	m.assignedTags = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assigned_tags",
		Help:      "Tags currently bound to a team at the end of the last replay",
	})

	m.replayRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Replay runs by outcome",
	}, []string{"status"})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a replay run",
		Buckets:   m.histogramBuckets,
	})

	m.filterLines = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "filter",
		Name:      "lines_total",
		Help:      "Reader log lines seen by the filter, by result",
	}, []string{"result"})

	m.importItems = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "items_total",
		Help:      "Lines pushed into the list store",
	})

	m.exportObjects = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "export",
		Name:      "objects_total",
		Help:      "Objects written by the exporter, by destination kind",
	}, []string{"destination"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and error type",
	}, []string{"component", "type"})
}

// RecordEvent counts one consumed log event of the given type.
func RecordEvent(eventType string) {
	globalManager.eventsTotal.WithLabelValues(eventType).Inc()
}

// RecordSightingDiscarded counts a TagSeen event dropped for reason.
func RecordSightingDiscarded(reason string) {
	globalManager.sightingsDiscarded.WithLabelValues(reason).Inc()
}

// RecordReadDebounced counts a duplicate read inside the debounce window.
func RecordReadDebounced() {
	globalManager.readsDebounced.Inc()
}

// RecordPassAccepted counts an accepted pass.
func RecordPassAccepted() {
	globalManager.passesAccepted.Inc()
}

// UpdateAssignedTags sets the number of tags bound to a team.
func UpdateAssignedTags(count int) {
	globalManager.assignedTags.Set(float64(count))
}

// RecordReplayRun counts a finished run; status is "ok" or "error".
func RecordReplayRun(status string) {
	globalManager.replayRuns.WithLabelValues(status).Inc()
}

// ObserveReplayDuration records the wall time of a run in seconds.
func ObserveReplayDuration(seconds float64) {
	globalManager.replayDuration.Observe(seconds)
}

// RecordFilterLine counts a reader log line as kept or dropped.
func RecordFilterLine(kept bool) {
	result := "dropped"
	if kept {
		result = "kept"
	}
	globalManager.filterLines.WithLabelValues(result).Inc()
}

// RecordImportItems adds n pushed list items.
func RecordImportItems(n int) {
	globalManager.importItems.Add(float64(n))
}

// RecordExportObject counts one exported object.
func RecordExportObject(destination string) {
	globalManager.exportObjects.WithLabelValues(destination).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter's textfile collector. Batch commands call it on exit.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

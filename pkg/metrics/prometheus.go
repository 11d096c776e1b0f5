// Package metrics provides Prometheus metrics for the housecup scoreboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit outcomes used as the "outcome" label of commits_total.
const (
	OutcomeCommitted            = "committed"
	OutcomeEmptyAssignment      = "empty_assignment"
	OutcomeDuplicateParticipant = "duplicate_participant"
	OutcomeUnknownPlacement     = "unknown_placement"
	OutcomeReplayed             = "replayed"
	OutcomeError                = "error"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	commits           *prometheus.CounterVec
	recomputes        prometheus.Counter
	recomputeDuration prometheus.Histogram
	recomputeSkipped  prometheus.Counter
	skippedEntries    *prometheus.CounterVec
	boardRevision     prometheus.Gauge

	// Roster
	houses          prometheus.Gauge
	players         prometheus.Gauge
	eventsCompleted prometheus.Gauge
	eventsScheduled prometheus.Gauge

	// Change queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount  prometheus.Gauge
	workerErrors *prometheus.CounterVec

	// Fan-out
	notifications      prometheus.Counter
	notificationErrors prometheus.Counter

	// Repository
	storeWriteLatency prometheus.Histogram
	storeErrors       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "housecup",
		subsystem:        "scoreboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.commits = auto.NewCounterVec(m.counter("commits_total", "Result commit attempts by outcome"), []string{"outcome"})
	m.recomputes = auto.NewCounter(m.counter("recomputes_total", "Scoreboard recomputations published"))
	m.recomputeDuration = auto.NewHistogram(m.histogram("recompute_duration_milliseconds", "Time to aggregate a snapshot in milliseconds"))
	m.recomputeSkipped = auto.NewCounter(m.counter("recomputes_coalesced_total", "Change notifications already covered by a newer scoreboard"))
	m.skippedEntries = auto.NewCounterVec(m.counter("skipped_entries_total", "Result entries ignored during aggregation by reason"), []string{"reason"})
	m.boardRevision = auto.NewGauge(m.gauge("revision", "Store revision of the published scoreboard"))

	m.houses = auto.NewGauge(m.gauge("houses", "Number of houses in the roster"))
	m.players = auto.NewGauge(m.gauge("players", "Number of players in the roster"))
	m.eventsCompleted = auto.NewGauge(m.gauge("events_completed", "Number of completed events"))
	m.eventsScheduled = auto.NewGauge(m.gauge("events_scheduled", "Number of events not yet completed"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Pending change notifications"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Capacity of the change notification queue"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Change notifications enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Change notifications dequeued"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counter("queue_enqueue_errors_total", "Rejected change notifications by reason"), []string{"reason"})

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Running recompute workers"))
	m.workerErrors = auto.NewCounterVec(m.counter("worker_errors_total", "Recompute worker errors by stage"), []string{"stage"})

	m.notifications = auto.NewCounter(m.counter("notifications_total", "Scoreboard updates published to subscribers"))
	m.notificationErrors = auto.NewCounter(m.counter("notification_errors_total", "Scoreboard updates that failed to publish"))

	m.storeWriteLatency = auto.NewHistogram(m.histogram("store_write_latency_milliseconds", "Repository write latency in milliseconds"))
	m.storeErrors = auto.NewCounterVec(m.counter("store_errors_total", "Repository errors by operation"), []string{"op"})

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("http_errors_total", "HTTP errors by endpoint, method and error type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds"))
}

// RecordCommit counts a result commit attempt with the given outcome.
func RecordCommit(outcome string) {
	globalManager.commits.WithLabelValues(outcome).Inc()
}

// RecordRecompute records a published recomputation and its duration.
func RecordRecompute(durationMs float64, revision uint64) {
	globalManager.recomputes.Inc()
	globalManager.recomputeDuration.Observe(durationMs)
	globalManager.boardRevision.Set(float64(revision))
}

// RecordRecomputeCoalesced counts a notification whose revision was already published.
func RecordRecomputeCoalesced() {
	globalManager.recomputeSkipped.Inc()
}

// RecordSkippedEntries adds n skipped aggregation entries for reason.
func RecordSkippedEntries(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.skippedEntries.WithLabelValues(reason).Add(float64(n))
}

// UpdateRoster sets the roster gauges.
func UpdateRoster(houses, players, completed, scheduled int) {
	globalManager.houses.Set(float64(houses))
	globalManager.players.Set(float64(players))
	globalManager.eventsCompleted.Set(float64(completed))
	globalManager.eventsScheduled.Set(float64(scheduled))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError counts a worker failure at stage.
func RecordWorkerError(stage string) {
	globalManager.workerErrors.WithLabelValues(stage).Inc()
}

// RecordNotification counts a published scoreboard update.
func RecordNotification() {
	globalManager.notifications.Inc()
}

// RecordNotificationError counts a failed scoreboard update publish.
func RecordNotificationError() {
	globalManager.notificationErrors.Inc()
}

// RecordStoreWriteLatency records repository write latency.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreError counts a repository error for op.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error with endpoint, method and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

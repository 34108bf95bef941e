package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	rowsTotal       *prometheus.CounterVec
	orphansTotal    *prometheus.CounterVec
	mergesTotal     *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	batchesInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "files_processed_total",
			Help:      "Total processed source files by entity type and outcome.",
		},
		[]string{"service", "entity_type", "status"},
	)
	rowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "rows_processed_total",
			Help:      "Total input rows by entity type and row outcome.",
		},
		[]string{"service", "entity_type", "outcome"},
	)
	orphansTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "orphan_references_total",
			Help:      "Total rows kept with unresolved customer or product references.",
		},
		[]string{"service", "entity_type"},
	)
	mergesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "identity_merges_total",
			Help:      "Total duplicate identities collapsed into canonical rows.",
		},
		[]string{"service", "entity_type"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "file_process_duration_seconds",
			Help:      "Batch processing duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "batches_in_flight",
			Help:      "Number of batches currently processing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "etl",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between event publish and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		filesTotal,
		rowsTotal,
		orphansTotal,
		mergesTotal,
		processDuration,
		batchesInFlight,
		queueLag,
	)

	return &WorkerMetrics{
		registry:        registry,
		filesTotal:      filesTotal,
		rowsTotal:       rowsTotal,
		orphansTotal:    orphansTotal,
		mergesTotal:     mergesTotal,
		processDuration: processDuration,
		batchesInFlight: batchesInFlight,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.batchesInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch(service, entityType, status string, duration time.Duration) {
	m.batchesInFlight.Dec()
	if entityType == "" {
		entityType = "unknown"
	}
	m.filesTotal.WithLabelValues(service, entityType, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// RecordBatchRows publishes the per-batch quality counters after a commit.
func (m *WorkerMetrics) RecordBatchRows(service, entityType string, valid, rejected, orphans, merges int) {
	if entityType == "" {
		entityType = "unknown"
	}
	if valid > 0 {
		m.rowsTotal.WithLabelValues(service, entityType, "valid").Add(float64(valid))
	}
	if rejected > 0 {
		m.rowsTotal.WithLabelValues(service, entityType, "rejected").Add(float64(rejected))
	}
	if orphans > 0 {
		m.orphansTotal.WithLabelValues(service, entityType).Add(float64(orphans))
	}
	if merges > 0 {
		m.mergesTotal.WithLabelValues(service, entityType).Add(float64(merges))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

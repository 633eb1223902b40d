package tasks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "seo_audit"
	MetricsSubsystem = "tasks"
)

// Metrics holds the task pipeline's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	Enqueued        *prometheus.CounterVec
	Processed       *prometheus.CounterVec
	Retries         *prometheus.CounterVec
	DurationSeconds *prometheus.HistogramVec
	Running         prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "enqueued_total",
			Help:      "Total number of tasks enqueued",
		}, []string{"task", "queue"}),
		Processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "processed_total",
			Help:      "Total number of task attempts by outcome",
		}, []string{"task", "status"}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "retries_total",
			Help:      "Total number of task retries scheduled",
		}, []string{"task"}),
		DurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration of a single task attempt in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
		}, []string{"task"}),
		Running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "running",
			Help:      "Number of task attempts currently running",
		}),
	}
}

func (m *Metrics) enqueued(t *Task) {
	if m == nil {
		return
	}
	m.Enqueued.WithLabelValues(t.Name, string(t.Queue)).Inc()
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.Running.Inc()
}

func (m *Metrics) finished(name string, status Status, took time.Duration) {
	if m == nil {
		return
	}
	m.Running.Dec()
	m.Processed.WithLabelValues(name, string(status)).Inc()
	m.DurationSeconds.WithLabelValues(name).Observe(took.Seconds())
	if status == StatusRetrying {
		m.Retries.WithLabelValues(name).Inc()
	}
}

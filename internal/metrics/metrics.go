package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bara-directory/seeder/internal/pipeline"
)

// Metrics collects pipeline counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	retries     *prometheus.CounterVec
	lastRun     *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
}

// New registers the seeder metrics plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seeder",
		Name:      "records_total",
		Help:      "Records processed, by outcome and the stage that decided it",
	}, []string{"pipeline", "outcome", "stage"})
	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seeder",
		Name:      "record_duration_seconds",
		Help:      "Time spent moving one record through the pipeline",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"pipeline"})
	m.retries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seeder",
		Name:      "write_retries_total",
		Help:      "Sink writes repeated after a transient failure",
	}, []string{"pipeline"})
	m.lastRun = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "seeder",
		Name:      "last_run_records",
		Help:      "Record counts of the most recent run",
	}, []string{"pipeline", "result"})
	m.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "seeder",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the most recent run finished",
	}, []string{"pipeline"})

	m.registry.MustRegister(
		m.records, m.latency, m.retries, m.lastRun, m.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe implements pipeline.Observer.
func (m *Metrics) Observe(name string, outcome pipeline.Outcome, stage pipeline.Stage, elapsed time.Duration) {
	m.records.WithLabelValues(name, string(outcome), string(stage)).Inc()
	m.latency.WithLabelValues(name).Observe(elapsed.Seconds())
}

// RunFinished records the summary of a completed run.
func (m *Metrics) RunFinished(stats pipeline.Stats, finished time.Time) {
	m.retries.WithLabelValues(stats.Pipeline).Add(float64(stats.Retries))
	m.lastRun.WithLabelValues(stats.Pipeline, "succeeded").Set(float64(stats.Succeeded))
	m.lastRun.WithLabelValues(stats.Pipeline, "failed").Set(float64(stats.Failed))
	m.lastSuccess.WithLabelValues(stats.Pipeline).Set(float64(finished.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ pipeline.Observer = (*Metrics)(nil)

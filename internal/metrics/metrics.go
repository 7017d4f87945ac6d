// Package metrics records per-run Prometheus metrics for the textfile
// collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated during a run.
type Metrics struct {
	Runs            *prometheus.CounterVec
	CallSeconds     *prometheus.HistogramVec
	LastSuccess     prometheus.Gauge
	EligibleLots    prometheus.Gauge
	PostLength      prometheus.Gauge
	gatherer        prometheus.Gatherer
	startedAt       time.Time
	runDurationSecs prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "everylot_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		CallSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "everylot_call_duration_seconds",
			Help:    "Duration of calls to the dataset and external services.",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
		LastSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "everylot_last_success_timestamp_seconds",
			Help: "Unix time of the last run that posted a lot.",
		}),
		EligibleLots: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "everylot_eligible_lots",
			Help: "Lots still eligible for random selection.",
		}),
		PostLength: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "everylot_post_length_graphemes",
			Help: "Length of the last composed post.",
		}),
		runDurationSecs: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "everylot_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		gatherer:  reg,
		startedAt: time.Now(),
	}
}

// Observe records the duration of a call started at start.
func (m *Metrics) Observe(call string, start time.Time) {
	m.CallSeconds.WithLabelValues(call).Observe(time.Since(start).Seconds())
}

// Outcome counts a finished run.
func (m *Metrics) Outcome(outcome string) {
	m.Runs.WithLabelValues(outcome).Inc()
}

// WriteFile writes all metrics to path in the text exposition format.
// The write goes through a temporary file so the collector never reads a
// partial file.
func (m *Metrics) WriteFile(path string) error {
	m.runDurationSecs.Set(time.Since(m.startedAt).Seconds())
	return prometheus.WriteToTextfile(path, m.gatherer)
}

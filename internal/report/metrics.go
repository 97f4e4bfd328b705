package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/banshee-data/splat-tools/internal/splat"
)

// Metrics holds the batch counters exported to a node_exporter textfile.
type Metrics struct {
	reg *prometheus.Registry

	files      *prometheus.CounterVec
	pointsIn   *prometheus.CounterVec
	pointsKept *prometheus.CounterVec
	bytesOut   *prometheus.CounterVec
	duration   *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splat_files_processed_total",
			Help: "Files processed, by tool and outcome",
		}, []string{"tool", "status"}),
		pointsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splat_points_read_total",
			Help: "Points read from successfully processed files",
		}, []string{"tool"}),
		pointsKept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splat_points_kept_total",
			Help: "Points written to outputs",
		}, []string{"tool"}),
		bytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splat_bytes_written_total",
			Help: "Bytes written to outputs",
		}, []string{"tool"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "splat_batch_duration_seconds",
			Help: "Wall time of the most recent batch",
		}, []string{"tool"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "splat_batch_last_run_timestamp_seconds",
			Help: "Unix time the most recent batch finished",
		}, []string{"tool"}),
	}
	m.reg.MustRegister(m.files, m.pointsIn, m.pointsKept, m.bytesOut, m.duration, m.lastRun)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Observe adds one batch worth of results for tool.
func (m *Metrics) Observe(tool string, results []splat.Result, elapsed time.Duration) {
	for _, r := range results {
		if r.Err != nil {
			m.files.WithLabelValues(tool, "error").Inc()
			continue
		}
		m.files.WithLabelValues(tool, "ok").Inc()
		m.pointsIn.WithLabelValues(tool).Add(float64(r.Stats.Points))
		m.pointsKept.WithLabelValues(tool).Add(float64(r.Stats.Kept))
		m.bytesOut.WithLabelValues(tool).Add(float64(r.Stats.Bytes))
	}
	m.duration.WithLabelValues(tool).Set(elapsed.Seconds())
	m.lastRun.WithLabelValues(tool).SetToCurrentTime()
}

// WriteTextfile atomically writes the registry in text exposition format
// to path, for collection by node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

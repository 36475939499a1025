package telemetry

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics collects run and stage measurements on a private Prometheus
// registry. The registry is dumped in text format at process exit rather
// than scraped; a run is a short-lived process.
type Metrics struct {
	config MetricsConfig

	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	stagesExecuted *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector. A disabled config yields a no-op
// instance.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of case runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of case runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		stagesExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stages_executed_total",
				Help:      "Total number of stage processes executed",
			},
			[]string{"kind", "exit_code"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of stage processes in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.runsCompleted,
		m.runDuration,
		m.stagesExecuted,
		m.stageDuration,
	)
	return m, nil
}

// StageFinished records one executed stage process.
func (m *Metrics) StageFinished(kind string, duration time.Duration, exitCode int) {
	if m.stagesExecuted == nil {
		return
	}
	m.stagesExecuted.WithLabelValues(kind, strconv.Itoa(exitCode)).Inc()
	m.stageDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RunFinished records a completed run with its status and duration.
func (m *Metrics) RunFinished(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Dump writes the collected metrics in Prometheus text format.
func (m *Metrics) Dump(w io.Writer) error {
	if m.registry == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}
	return nil
}

// Package metric measures renders. Metric and Meter are nil-safe: a nil
// metric produces nil meters and nil meters ignore all calls.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metric contains render collectors registered in own registry.
type Metric struct {
	registry    *prometheus.Registry
	renders     *prometheus.CounterVec
	duration    prometheus.Histogram
	evaluations *prometheus.CounterVec
	samples     prometheus.Counter
}

// New creates metric with a new registry.
func New() *Metric {
	r := prometheus.NewRegistry()
	return &Metric{
		registry: r,
		renders: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Name: "synth_renders_total",
				Help: "Total number of graph renders",
			},
			[]string{"result"}, // ok, error
		),
		duration: promauto.With(r).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "synth_render_duration_seconds",
				Help:    "Duration of graph renders in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),
		evaluations: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Name: "synth_node_evaluations_total",
				Help: "Total number of node function calls",
			},
			[]string{"function"},
		),
		samples: promauto.With(r).NewCounter(
			prometheus.CounterOpts{
				Name: "synth_rendered_samples_total",
				Help: "Total number of rendered samples",
			},
		),
	}
}

// Registry returns registry with all collectors, it can be exposed by
// prometheus handlers.
func (m *Metric) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Meter starts measuring a single render.
func (m *Metric) Meter() *Meter {
	if m == nil {
		return nil
	}
	return &Meter{
		metric:    m,
		startedAt: time.Now(),
	}
}

// Meter measures a single render.
type Meter struct {
	metric    *Metric
	startedAt time.Time
}

// Node captures evaluation of node function.
func (m *Meter) Node(function string) {
	if m == nil {
		return
	}
	m.metric.evaluations.WithLabelValues(function).Inc()
}

// Done captures render result.
func (m *Meter) Done(samples int, err error) {
	if m == nil {
		return
	}
	m.metric.duration.Observe(time.Since(m.startedAt).Seconds())
	if err != nil {
		m.metric.renders.WithLabelValues(ResultError).Inc()
		return
	}
	m.metric.renders.WithLabelValues(ResultOK).Inc()
	m.metric.samples.Add(float64(samples))
}

package synth

import (
	"github.com/pipelined/synth/log"
	"github.com/pipelined/synth/metric"
)

// Option configures engine.
type Option func(*Engine)

// WithLogger sets engine logger.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithMetric adds metrics for renders and node evaluations.
func WithMetric(m *metric.Metric) Option {
	return func(e *Engine) {
		e.metric = m
	}
}

// WithConcurrency enables concurrent evaluation of node inputs. Every
// connected input is evaluated in its own goroutine and node function is
// called once all of them are done.
func WithConcurrency(enabled bool) Option {
	return func(e *Engine) {
		e.concurrent = enabled
	}
}

package aggregate

import (
	"log/slog"

	"github.com/frangb/nokycbot/metrics"
)

type Option func(a *Aggregator)

// WithLogger specifies the logger for the aggregator
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithMetrics specifies the pipeline metrics for the aggregator
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

package dataset

import (
	"log/slog"

	"github.com/marketpulse/indexq/metrics"
)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

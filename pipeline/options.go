package pipeline

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/marketpulse/indexq/analytics"
	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/metrics"
)

// TracerName is the instrumentation scope of pipeline spans.
const TracerName = "github.com/marketpulse/indexq/pipeline"

type options struct {
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracerProvider trace.TracerProvider
	window         int
	coreOpts       []core.Option
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:         slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
		window:         analytics.DefaultWindow,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
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

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithRollingWindow sets the rolling average window of views.
func WithRollingWindow(n int) Option {
	return func(o *options) {
		o.window = n
	}
}

// WithCoreOptions passes options to the query client, poller and decoder.
func WithCoreOptions(opts ...core.Option) Option {
	return func(o *options) {
		o.coreOpts = append(o.coreOpts, opts...)
	}
}

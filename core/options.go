package core

import (
	"log/slog"
	"time"

	"github.com/marketpulse/indexq/metrics"
)

const DefaultPollInterval = time.Second

type options struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    Clock
	interval time.Duration
	timeout  time.Duration
	onEvent  func(ExecutionState, *Execution)
	maxPages int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:   slog.Default(),
		clock:    realClock{},
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Client, Poller or Decoder. Options that don't apply to
// a component are ignored by it.
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

// WithClock replaces the wall clock used between polls.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithPollInterval sets the wait between two status requests.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithPollTimeout bounds the total time spent waiting for a terminal state.
// Zero disables the deadline.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithStateCallback registers a function triggered on every state transition.
func WithStateCallback(fn func(ExecutionState, *Execution)) Option {
	return func(o *options) {
		o.onEvent = fn
	}
}

// WithMaxPages bounds the number of result pages a decoder fetches.
// Zero means unlimited.
func WithMaxPages(n int) Option {
	return func(o *options) {
		o.maxPages = n
	}
}

// Package metrics exposes prometheus collectors for query execution and
// dataset cleaning. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "indexq"

type Metrics struct {
	submitted         prometheus.Counter
	submitFailures    prometheus.Counter
	polls             prometheus.Counter
	executions        *prometheus.CounterVec
	executionDuration prometheus.Histogram
	rowsDecoded       prometheus.Counter
	rowsExcluded      prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_submitted_total",
			Help:      "Queries accepted by the query service.",
		}),
		submitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_submission_failures_total",
			Help:      "Queries the query service refused or could not receive.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "execution_polls_total",
			Help:      "Execution status requests.",
		}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Executions that reached a terminal state.",
		}, []string{"state"}),
		executionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Time from the first poll to the terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		rowsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_decoded_total",
			Help:      "Data rows decoded from result payloads.",
		}),
		rowsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_excluded_total",
			Help:      "Rows dropped by the normalizer because a required field failed coercion.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.submitted,
			m.submitFailures,
			m.polls,
			m.executions,
			m.executionDuration,
			m.rowsDecoded,
			m.rowsExcluded,
		)
	}

	return m
}

func (m *Metrics) QuerySubmitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
}

func (m *Metrics) SubmissionFailed() {
	if m == nil {
		return
	}
	m.submitFailures.Inc()
}

func (m *Metrics) Polled() {
	if m == nil {
		return
	}
	m.polls.Inc()
}

func (m *Metrics) ExecutionFinished(state string, took time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(state).Inc()
	m.executionDuration.Observe(took.Seconds())
}

func (m *Metrics) RowsDecoded(n int) {
	if m == nil {
		return
	}
	m.rowsDecoded.Add(float64(n))
}

func (m *Metrics) RowsExcluded(n int) {
	if m == nil {
		return
	}
	m.rowsExcluded.Add(float64(n))
}

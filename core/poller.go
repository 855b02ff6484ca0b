package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketpulse/indexq/metrics"
)

// Poller waits for executions to reach a terminal state.
type Poller struct {
	service  Service
	clock    Clock
	interval time.Duration
	timeout  time.Duration
	onEvent  func(ExecutionState, *Execution)
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewPoller(service Service, opts ...Option) *Poller {
	o := newOptions(opts)

	return &Poller{
		service:  service,
		clock:    o.clock,
		interval: o.interval,
		timeout:  o.timeout,
		onEvent:  o.onEvent,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// AwaitCompletion polls the execution status until it is succeeded or failed.
// A failed execution is returned together with an *ExecutionError carrying the
// service provided reason. Cancellation of ctx stops the wait between
// intervals and abandons an in-flight status request. The poll timeout is
// measured on the poller's clock and checked after every status request.
func (p *Poller) AwaitCompletion(ctx context.Context, id ExecutionID) (*Execution, error) {
	start := p.clock.Now()
	deadline := start.Add(p.timeout)
	exec := newExecution(id, start)
	logger := p.logger.With(slog.String("execution_id", string(id)))

	var status *ExecutionStatus
	for {
		var err error
		status, err = p.fetchStatus(ctx, id)
		if err != nil {
			return exec, fmt.Errorf("await execution %s: %w", id, err)
		}
		p.metrics.Polled()

		previous := exec.state
		if exec.advance(status.State, p.clock.Now()) {
			logger.DebugContext(ctx, "execution state changed",
				slog.String("from", previous.String()),
				slog.String("to", exec.state.String()),
			)
			if p.onEvent != nil {
				p.onEvent(exec.state, exec)
			}
		} else if status.State != exec.state {
			logger.DebugContext(ctx, "ignoring out of order execution state",
				slog.String("state", exec.state.String()),
				slog.String("reported", status.State.String()),
			)
		}

		if exec.state.IsTerminal() {
			break
		}

		wait := p.interval
		if p.timeout > 0 {
			remaining := deadline.Sub(p.clock.Now())
			if remaining <= 0 {
				logger.WarnContext(ctx, "execution poll timeout reached",
					slog.Duration("timeout", p.timeout),
					slog.String("state", exec.state.String()),
				)
				return exec, fmt.Errorf("await execution %s: %w", id, context.DeadlineExceeded)
			}
			wait = min(wait, remaining)
		}

		select {
		case <-ctx.Done():
			return exec, fmt.Errorf("await execution %s: %w", id, ctx.Err())
		case <-p.clock.After(wait):
		}
	}

	p.metrics.ExecutionFinished(exec.state.String(), exec.timeTaken)

	if exec.state == ExecutionStateFailed {
		reason := status.FailureReason

		// the reason is retrieved with a dedicated request
		details, err := p.fetchStatus(ctx, id)
		if err != nil {
			logger.WarnContext(ctx, "could not retrieve failure reason", slog.Any("error", err))
		} else if details.FailureReason != "" {
			reason = details.FailureReason
		}

		exec.failureReason = reason
		logger.InfoContext(ctx, "execution finished", slog.Any("execution", exec))
		return exec, &ExecutionError{ID: id, Reason: reason}
	}

	logger.InfoContext(ctx, "execution finished", slog.Any("execution", exec))
	return exec, nil
}

// fetchStatus returns as soon as ctx is done, without waiting for the
// outstanding request.
func (p *Poller) fetchStatus(ctx context.Context, id ExecutionID) (*ExecutionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type response struct {
		status *ExecutionStatus
		err    error
	}
	// buffered, so the request goroutine never blocks after abandonment
	ch := make(chan response, 1)
	go func() {
		status, err := p.service.GetExecutionStatus(ctx, id)
		ch <- response{status: status, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.err != nil {
			return nil, fmt.Errorf("service.GetExecutionStatus: %w", resp.err)
		}
		if resp.status == nil {
			return nil, errors.New("service.GetExecutionStatus: empty status")
		}
		return resp.status, nil
	}
}

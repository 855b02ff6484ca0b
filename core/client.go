package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/marketpulse/indexq/metrics"
)

// Client submits queries to the query service.
type Client struct {
	service Service
	config  ServiceConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewClient(service Service, config ServiceConfig, opts ...Option) *Client {
	o := newOptions(opts)

	return &Client{
		service: service,
		config:  config,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Submit hands the request to the service and returns the execution handle.
// Failures are returned as *SubmissionError and never retried.
func (c *Client) Submit(ctx context.Context, req QueryRequest) (ExecutionID, error) {
	if strings.TrimSpace(req.SQL()) == "" {
		return "", &SubmissionError{Err: ErrEmptyQuery}
	}

	database := req.Database()
	if database == "" {
		database = c.config.Database
	}

	id, err := c.service.SubmitQuery(ctx, req.SQL(), database, c.config.OutputLocation)
	if err != nil {
		c.metrics.SubmissionFailed()
		c.logger.ErrorContext(ctx, "query submission failed",
			slog.String("database", database),
			slog.Any("error", err),
		)
		return "", &SubmissionError{Err: err}
	}

	c.metrics.QuerySubmitted()
	c.logger.DebugContext(ctx, "query submitted",
		slog.String("execution_id", string(id)),
		slog.String("database", database),
	)

	return id, nil
}

// Package pipeline wires the query client, poller, decoder, normalizer and
// analytics into a single refresh.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/marketpulse/indexq/adapters"
	"github.com/marketpulse/indexq/analytics"
	"github.com/marketpulse/indexq/config"
	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/dataset"
	"github.com/marketpulse/indexq/logging"
	"github.com/marketpulse/indexq/metrics"
)

// View is everything rendered for one index selection.
type View struct {
	// Indices are the selectable index symbols.
	Indices       []string
	SelectedIndex string
	Full          *dataset.CleanedDataset
	Selected      *dataset.CleanedDataset
	Series        *analytics.DerivedSeries
}

type Pipeline struct {
	service core.Service
	client  *core.Client
	poller  *core.Poller
	decoder *core.Decoder

	window  int
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(service core.Service, cfg core.ServiceConfig, opts ...Option) *Pipeline {
	o := newOptions(opts)

	coreOpts := append([]core.Option{
		core.WithLogger(o.logger),
		core.WithMetrics(o.metrics),
	}, o.coreOpts...)

	return &Pipeline{
		service: service,
		client:  core.NewClient(service, cfg, coreOpts...),
		poller:  core.NewPoller(service, coreOpts...),
		decoder: core.NewDecoder(service, coreOpts...),
		window:  o.window,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracerProvider.Tracer(TracerName),
	}
}

// NewFromConfig connects to the configured backend. Options given here take
// precedence over the configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	service, err := adapters.NewService(cfg.ConnectionParams())
	if err != nil {
		return nil, fmt.Errorf("adapters.NewService: %w", err)
	}

	defaults := []Option{
		WithLogger(logging.New(cfg.Logging(), nil)),
		WithRollingWindow(cfg.RollingWindow),
		WithCoreOptions(
			core.WithPollInterval(cfg.PollInterval),
			core.WithPollTimeout(cfg.PollTimeout),
			core.WithMaxPages(cfg.MaxPages),
		),
	}

	return New(service, cfg.ServiceConfig(), append(defaults, opts...)...), nil
}

func (p *Pipeline) Close() {
	p.service.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Fetch submits the query, waits for it and returns the cleaned result
// across all indices.
func (p *Pipeline) Fetch(ctx context.Context, req core.QueryRequest) (ds *dataset.CleanedDataset, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.fetch",
		trace.WithAttributes(attribute.String("query.database", req.Database())),
	)
	defer func() { endSpan(span, err) }()

	id, err := p.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("execution.id", string(id)))

	if err := p.await(ctx, id); err != nil {
		return nil, err
	}

	rs, err := p.decode(ctx, id)
	if err != nil {
		return nil, err
	}

	_, cleanSpan := p.tracer.Start(ctx, "pipeline.clean")
	ds = dataset.Clean(rs, "", dataset.WithLogger(p.logger), dataset.WithMetrics(p.metrics))
	cleanSpan.SetAttributes(
		attribute.Int("dataset.rows", ds.Len()),
		attribute.Int("dataset.excluded_rows", ds.Excluded()),
	)
	cleanSpan.End()

	p.logger.InfoContext(ctx, "dataset fetched",
		slog.String("execution_id", string(id)),
		slog.Int("rows", ds.Len()),
		slog.Int("excluded_rows", ds.Excluded()),
		slog.Int("indices", len(ds.Indices())),
	)

	return ds, nil
}

func (p *Pipeline) submit(ctx context.Context, req core.QueryRequest) (id core.ExecutionID, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.submit")
	defer func() { endSpan(span, err) }()

	return p.client.Submit(ctx, req)
}

func (p *Pipeline) await(ctx context.Context, id core.ExecutionID) (err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.await")
	defer func() { endSpan(span, err) }()

	exec, err := p.poller.AwaitCompletion(ctx, id)
	if exec != nil {
		span.SetAttributes(
			attribute.String("execution.state", exec.GetState().String()),
			attribute.String("execution.started_at", exec.GetTimestamp().Format(time.RFC3339Nano)),
			attribute.Int64("execution.time_taken_ms", exec.GetTimeTaken().Milliseconds()),
		)
	}
	return err
}

func (p *Pipeline) decode(ctx context.Context, id core.ExecutionID) (rs *core.ResultSet, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.decode")
	defer func() { endSpan(span, err) }()

	rs, err = p.decoder.Decode(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.rows", rs.Len()))
	return rs, nil
}

// View derives the series of one index. An empty selectedIndex selects the
// first available index.
func (p *Pipeline) View(ctx context.Context, full *dataset.CleanedDataset, selectedIndex string) (view *View, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.view")
	defer func() { endSpan(span, err) }()

	indices := full.Indices()

	selected := dataset.NormalizeSymbol(selectedIndex)
	if selected == "" && len(indices) > 0 {
		selected = indices[0]
	}
	span.SetAttributes(attribute.String("index.selected", selected))

	selection := full.Filter(selected)

	series, err := analytics.Compute(ctx, full, selection, p.window)
	if err != nil {
		return nil, fmt.Errorf("analytics.Compute: %w", err)
	}

	return &View{
		Indices:       indices,
		SelectedIndex: selected,
		Full:          full,
		Selected:      selection,
		Series:        series,
	}, nil
}

// Refresh fetches the dataset and derives the view of selectedIndex.
func (p *Pipeline) Refresh(ctx context.Context, req core.QueryRequest, selectedIndex string) (*View, error) {
	full, err := p.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	return p.View(ctx, full, selectedIndex)
}

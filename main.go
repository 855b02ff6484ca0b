// Command indexq refreshes the stock index dataset from the configured query
// service and writes the selected index with its derived series summary.
//
// All settings come from INDEXQ_* environment variables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketpulse/indexq/config"
	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/logging"
	"github.com/marketpulse/indexq/output"
	"github.com/marketpulse/indexq/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// stdout may carry the result
	logger := logging.New(cfg.Logging(), os.Stderr)

	if err := run(cfg, logger); err != nil {
		logger.Error("refresh failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter, err := output.FormatterFromName(cfg.OutputFormat)
	if err != nil {
		return err
	}

	p, err := pipeline.NewFromConfig(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("pipeline.NewFromConfig: %w", err)
	}
	defer p.Close()

	view, err := p.Refresh(ctx, core.NewQueryRequest(cfg.Query, cfg.Database), cfg.Index)
	if err != nil {
		return fmt.Errorf("p.Refresh: %w", err)
	}

	attrs := []any{
		slog.String("index", view.SelectedIndex),
		slog.Any("indices", view.Indices),
		slog.Int("rows", view.Selected.Len()),
		slog.Int("excluded_rows", view.Full.Excluded()),
	}
	if b := view.Series.Bounds; b != nil {
		attrs = append(attrs,
			slog.Time("from", b.XMin),
			slog.Time("to", b.XMax),
			slog.Float64("y_min", b.YMin),
			slog.Float64("y_max", b.YMax),
		)
	}
	logger.Info("index refreshed", attrs...)

	return output.NewFile(cfg.Output, formatter, logger).Write(view.Selected.ResultSet())
}

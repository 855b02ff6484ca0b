package analytics

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/marketpulse/indexq/dataset"
)

// DerivedSeries bundles everything a dashboard refresh renders.
type DerivedSeries struct {
	// Rolling is the rolling average of the selected index.
	Rolling []RollingPoint
	// Grouped is the mean close per index and date over the full dataset.
	Grouped []GroupPoint
	// Correlation is nil when the selection has fewer than 2 records.
	Correlation *CorrelationMatrix
	// Bounds is nil when the selection is empty.
	Bounds *AxisBounds
}

// Compute derives all series concurrently. full feeds the grouped aggregate,
// selected (a single index sorted by date) feeds the rest. Undefined results
// are reported as nil fields, only an invalid window is an error.
func Compute(ctx context.Context, full, selected *dataset.CleanedDataset, window int) (*DerivedSeries, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	records := selected.Records()
	series := &DerivedSeries{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rolling, err := RollingAverage(records, window)
		if err != nil {
			return err
		}
		series.Rolling = rolling
		return ctx.Err()
	})

	g.Go(func() error {
		series.Grouped = GroupedAggregate(full.Records())
		return ctx.Err()
	})

	g.Go(func() error {
		m, err := Correlation(records)
		if errors.Is(err, ErrInsufficientRows) {
			return nil
		}
		if err != nil {
			return err
		}
		series.Correlation = m
		return ctx.Err()
	})

	g.Go(func() error {
		bounds, err := CandlestickAxisBounds(records)
		if errors.Is(err, ErrNoRecords) {
			return nil
		}
		if err != nil {
			return err
		}
		series.Bounds = &bounds
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return series, nil
}

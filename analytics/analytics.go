// Package analytics derives chart series from cleaned index records. All
// functions are pure and safe to run concurrently on the same input.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/montanaflynn/stats"

	"github.com/marketpulse/indexq/dataset"
)

const (
	DefaultWindow = 10
	// AxisPadding is added below the lowest low and above the highest high.
	AxisPadding = 50.0
)

var (
	ErrInvalidWindow    = errors.New("rolling window must be at least 1")
	ErrInsufficientRows = errors.New("correlation needs at least 2 rows")
	ErrNoRecords        = errors.New("no records")
)

// CorrelationFields are the record fields of the correlation matrix, in order.
var CorrelationFields = []string{"open", "high", "low", "close", "volume"}

type (
	RollingPoint struct {
		Date  time.Time
		Close float64
		// Average is null for the first window-1 points.
		Average null.Float
	}

	GroupPoint struct {
		IndexSymbol string
		Date        time.Time
		MeanClose   float64
		Count       int
	}

	// CorrelationMatrix holds pairwise Pearson coefficients. Pairs involving a
	// constant field are NaN.
	CorrelationMatrix struct {
		Fields []string
		Values [][]float64
	}

	AxisBounds struct {
		XMin time.Time
		XMax time.Time
		YMin float64
		YMax float64
	}
)

// RollingAverage computes the simple moving average of close over the
// trailing window records, in the given order.
func RollingAverage(records []dataset.Record, window int) ([]RollingPoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	closes := make([]float64, len(records))
	for i, rec := range records {
		closes[i] = rec.Close
	}

	points := make([]RollingPoint, len(records))
	for i, rec := range records {
		points[i] = RollingPoint{
			Date:  rec.Date,
			Close: rec.Close,
		}
		if i < window-1 {
			continue
		}

		mean, err := stats.Mean(closes[i-window+1 : i+1])
		if err != nil {
			return nil, fmt.Errorf("stats.Mean: %w", err)
		}
		points[i].Average = null.FloatFrom(mean)
	}

	return points, nil
}

// RollingAverageByIndex computes the rolling average of every index, each
// ordered by date.
func RollingAverageByIndex(ds *dataset.CleanedDataset, window int) (map[string][]RollingPoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	series := make(map[string][]RollingPoint)
	for _, index := range ds.Indices() {
		points, err := RollingAverage(ds.Filter(index).Records(), window)
		if err != nil {
			return nil, err
		}
		series[index] = points
	}

	return series, nil
}

// GroupedAggregate returns the mean close per index and date, sorted by index
// and then by date.
func GroupedAggregate(records []dataset.Record) []GroupPoint {
	type key struct {
		index string
		date  time.Time
	}

	groups := make(map[key][]float64)
	for _, rec := range records {
		k := key{index: rec.IndexSymbol, date: rec.Date}
		groups[k] = append(groups[k], rec.Close)
	}

	points := make([]GroupPoint, 0, len(groups))
	for k, closes := range groups {
		// groups are never empty
		mean, _ := stats.Mean(closes)
		points = append(points, GroupPoint{
			IndexSymbol: k.index,
			Date:        k.date,
			MeanClose:   mean,
			Count:       len(closes),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].IndexSymbol != points[j].IndexSymbol {
			return points[i].IndexSymbol < points[j].IndexSymbol
		}
		return points[i].Date.Before(points[j].Date)
	})

	return points
}

func correlationColumns(records []dataset.Record) [][]float64 {
	columns := make([][]float64, len(CorrelationFields))
	for i := range columns {
		columns[i] = make([]float64, len(records))
	}

	for j, rec := range records {
		columns[0][j] = rec.Open
		columns[1][j] = rec.High
		columns[2][j] = rec.Low
		columns[3][j] = rec.Close
		columns[4][j] = rec.Volume
	}

	return columns
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Correlation computes the Pearson correlation matrix over open, high, low,
// close and volume. The matrix is symmetric with a unit diagonal for every
// non-constant field.
func Correlation(records []dataset.Record) (*CorrelationMatrix, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientRows, len(records))
	}

	columns := correlationColumns(records)

	constant := make([]bool, len(columns))
	for i, col := range columns {
		constant[i] = isConstant(col)
	}

	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var v float64
			switch {
			case constant[i] || constant[j]:
				v = math.NaN()
			case i == j:
				v = 1
			default:
				p, err := stats.Pearson(columns[i], columns[j])
				if err != nil {
					return nil, fmt.Errorf("stats.Pearson: %w", err)
				}
				v = math.Max(-1, math.Min(1, p))
			}
			values[i][j] = v
			values[j][i] = v
		}
	}

	return &CorrelationMatrix{
		Fields: append([]string(nil), CorrelationFields...),
		Values: values,
	}, nil
}

// Get returns the coefficient of two fields and false if a field is unknown.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, f := range m.Fields {
		if f == a {
			i = k
		}
		if f == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// CandlestickAxisBounds spans the dates of the records and their lows and
// highs, padded by AxisPadding.
func CandlestickAxisBounds(records []dataset.Record) (AxisBounds, error) {
	if len(records) == 0 {
		return AxisBounds{}, ErrNoRecords
	}

	bounds := AxisBounds{
		XMin: records[0].Date,
		XMax: records[0].Date,
		YMin: records[0].Low,
		YMax: records[0].High,
	}
	for _, rec := range records[1:] {
		if rec.Date.Before(bounds.XMin) {
			bounds.XMin = rec.Date
		}
		if rec.Date.After(bounds.XMax) {
			bounds.XMax = rec.Date
		}
		bounds.YMin = math.Min(bounds.YMin, rec.Low)
		bounds.YMax = math.Max(bounds.YMax, rec.High)
	}

	bounds.YMin -= AxisPadding
	bounds.YMax += AxisPadding

	return bounds, nil
}

package analytics_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"github.com/marketpulse/indexq/analytics"
	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/dataset"
	"github.com/marketpulse/indexq/logging"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func closes(index string, values ...float64) []dataset.Record {
	records := make([]dataset.Record, len(values))
	for i, v := range values {
		records[i] = dataset.Record{
			Date:        day(i + 1),
			Open:        v - 1,
			High:        v + 2,
			Low:         v - 2,
			Close:       v,
			Volume:      1000 + 10*v,
			IndexSymbol: index,
		}
	}
	return records
}

func newDataset(t *testing.T, records []dataset.Record, selected string) *dataset.CleanedDataset {
	t.Helper()

	rows := make([]core.Row, len(records))
	for i, rec := range records {
		rows[i] = core.Row{
			core.DateValue(rec.Date),
			core.FloatValue(rec.Open),
			core.FloatValue(rec.High),
			core.FloatValue(rec.Low),
			core.FloatValue(rec.Close),
			core.FloatValue(rec.Volume),
			core.NullValue(),
			core.StringValue(rec.IndexSymbol),
		}
	}

	rs, err := core.NewResultSet(dataset.Columns, rows)
	require.NoError(t, err)

	return dataset.Clean(rs, selected, dataset.WithLogger(logging.Discard()))
}

func TestRollingAverage(t *testing.T) {
	r := require.New(t)

	values := []float64{10, 12, 9, 15, 20, 18, 11, 14, 13, 16, 25, 30}
	records := closes("NYA", values...)

	for w := 1; w <= len(values)+1; w++ {
		points, err := analytics.RollingAverage(records, w)
		r.NoError(err)
		r.Len(points, len(values))

		for i, p := range points {
			r.Equal(records[i].Date, p.Date)
			r.Equal(values[i], p.Close)

			if i < w-1 {
				r.False(p.Average.Valid, "window %d index %d", w, i)
				continue
			}

			sum := 0.0
			for _, v := range values[i-w+1 : i+1] {
				sum += v
			}
			r.True(p.Average.Valid)
			r.InDelta(sum/float64(w), p.Average.Float64, 1e-9, "window %d index %d", w, i)
		}
	}
}

func TestRollingAverage_DefaultWindow(t *testing.T) {
	r := require.New(t)

	points, err := analytics.RollingAverage(closes("NYA", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11), analytics.DefaultWindow)
	r.NoError(err)

	r.False(points[8].Average.Valid)
	r.Equal(null.FloatFrom(5.5), points[9].Average)
	r.Equal(null.FloatFrom(6.5), points[10].Average)
}

func TestRollingAverage_InvalidWindow(t *testing.T) {
	r := require.New(t)

	_, err := analytics.RollingAverage(closes("NYA", 1, 2), 0)
	r.ErrorIs(err, analytics.ErrInvalidWindow)

	points, err := analytics.RollingAverage(nil, 3)
	r.NoError(err)
	r.Empty(points)
}

func TestRollingAverageByIndex(t *testing.T) {
	r := require.New(t)

	records := append(closes("NYA", 1, 2, 3), closes("IXIC", 10, 20, 30, 40)...)
	// shuffle the order, the series must still be sorted by date
	records[0], records[2] = records[2], records[0]

	series, err := analytics.RollingAverageByIndex(newDataset(t, records, ""), 2)
	r.NoError(err)
	r.Len(series, 2)

	nya := series["NYA"]
	r.Len(nya, 3)
	r.Equal(day(1), nya[0].Date)
	r.False(nya[0].Average.Valid)
	r.Equal(null.FloatFrom(1.5), nya[1].Average)
	r.Equal(null.FloatFrom(2.5), nya[2].Average)

	r.Equal(null.FloatFrom(35.0), series["IXIC"][3].Average)

	_, err = analytics.RollingAverageByIndex(newDataset(t, records, ""), -1)
	r.ErrorIs(err, analytics.ErrInvalidWindow)
}

func TestGroupedAggregate(t *testing.T) {
	r := require.New(t)

	records := []dataset.Record{
		{IndexSymbol: "NYA", Date: day(2), Close: 10},
		{IndexSymbol: "IXIC", Date: day(1), Close: 100},
		{IndexSymbol: "NYA", Date: day(1), Close: 4},
		{IndexSymbol: "NYA", Date: day(2), Close: 20},
		{IndexSymbol: "NYA", Date: day(1), Close: 6},
	}

	r.Equal([]analytics.GroupPoint{
		{IndexSymbol: "IXIC", Date: day(1), MeanClose: 100, Count: 1},
		{IndexSymbol: "NYA", Date: day(1), MeanClose: 5, Count: 2},
		{IndexSymbol: "NYA", Date: day(2), MeanClose: 15, Count: 2},
	}, analytics.GroupedAggregate(records))

	r.Empty(analytics.GroupedAggregate(nil))
}

func TestCorrelation(t *testing.T) {
	r := require.New(t)

	records := []dataset.Record{
		{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 300},
		{Open: 2, High: 4, Low: 1.5, Close: 2.5, Volume: 200},
		{Open: 3, High: 5, Low: 2.0, Close: 3.5, Volume: 250},
		{Open: 4, High: 9, Low: 3.5, Close: 3.0, Volume: 100},
	}

	m, err := analytics.Correlation(records)
	r.NoError(err)
	r.Equal(analytics.CorrelationFields, m.Fields)
	r.Len(m.Values, 5)

	for i := range m.Values {
		r.Len(m.Values[i], 5)
		r.Equal(1.0, m.Values[i][i])
		for j := range m.Values {
			r.Equal(m.Values[i][j], m.Values[j][i])
			r.LessOrEqual(math.Abs(m.Values[i][j]), 1.0)
		}
	}

	// open and high move together, open and volume against each other
	openHigh, ok := m.Get("open", "high")
	r.True(ok)
	r.Greater(openHigh, 0.9)

	openVolume, ok := m.Get("volume", "open")
	r.True(ok)
	r.Less(openVolume, 0.0)

	_, ok = m.Get("open", "adj close")
	r.False(ok)
}

func TestCorrelation_PerfectlyLinear(t *testing.T) {
	r := require.New(t)

	m, err := analytics.Correlation(closes("NYA", 1, 2, 3, 4))
	r.NoError(err)

	for i := range m.Values {
		for j := range m.Values {
			r.InDelta(1.0, m.Values[i][j], 1e-9)
		}
	}
}

func TestCorrelation_Undefined(t *testing.T) {
	r := require.New(t)

	_, err := analytics.Correlation(closes("NYA", 1))
	r.ErrorIs(err, analytics.ErrInsufficientRows)

	_, err = analytics.Correlation(nil)
	r.ErrorIs(err, analytics.ErrInsufficientRows)

	// a constant volume column has no defined correlation
	records := closes("NYA", 1, 2, 3)
	for i := range records {
		records[i].Volume = 500
	}

	m, err := analytics.Correlation(records)
	r.NoError(err)

	v, _ := m.Get("volume", "volume")
	r.True(math.IsNaN(v))
	v, _ = m.Get("close", "volume")
	r.True(math.IsNaN(v))
	v, _ = m.Get("close", "close")
	r.Equal(1.0, v)
}

func TestCandlestickAxisBounds(t *testing.T) {
	r := require.New(t)

	records := []dataset.Record{
		{Date: day(3), Low: 95, High: 110},
		{Date: day(1), Low: 90, High: 105},
		{Date: day(2), Low: 99, High: 120},
	}

	bounds, err := analytics.CandlestickAxisBounds(records)
	r.NoError(err)
	r.Equal(analytics.AxisBounds{
		XMin: day(1),
		XMax: day(3),
		YMin: 40,
		YMax: 170,
	}, bounds)

	_, err = analytics.CandlestickAxisBounds(nil)
	r.ErrorIs(err, analytics.ErrNoRecords)
}

func TestCompute(t *testing.T) {
	r := require.New(t)

	records := append(closes("NYA", 1, 2, 3, 4), closes("IXIC", 10, 20)...)
	full := newDataset(t, records, "")
	selected := full.Filter("NYA")

	series, err := analytics.Compute(context.Background(), full, selected, 2)
	r.NoError(err)

	r.Len(series.Rolling, 4)
	r.Equal(null.FloatFrom(3.5), series.Rolling[3].Average)
	r.Len(series.Grouped, 6)
	r.NotNil(series.Correlation)
	r.NotNil(series.Bounds)
	r.Equal(-51.0, series.Bounds.YMin)
	r.Equal(56.0, series.Bounds.YMax)
}

func TestCompute_Undefined(t *testing.T) {
	r := require.New(t)

	full := newDataset(t, closes("NYA", 1), "")

	series, err := analytics.Compute(context.Background(), full, full.Filter("NYA"), analytics.DefaultWindow)
	r.NoError(err)
	r.Len(series.Rolling, 1)
	r.Nil(series.Correlation)
	r.NotNil(series.Bounds)

	series, err = analytics.Compute(context.Background(), full, full.Filter("DAX"), analytics.DefaultWindow)
	r.NoError(err)
	r.Empty(series.Rolling)
	r.Nil(series.Bounds)
	r.Len(series.Grouped, 1)

	_, err = analytics.Compute(context.Background(), full, full, 0)
	r.ErrorIs(err, analytics.ErrInvalidWindow)
}

// Package dataset turns decoded query results into validated stock index
// records.
package dataset

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/marketpulse/indexq/core"
)

// Record is a single trading day of one index. All fields but CloseUSD are
// guaranteed to be present.
type Record struct {
	Date        time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	CloseUSD    null.Float
	IndexSymbol string
}

// CleanedDataset is the read-only result of Clean.
type CleanedDataset struct {
	records  []Record
	excluded int
}

// Columns of the presentation form of a dataset.
var Columns = []core.Column{
	{Name: "date", Type: "date"},
	{Name: "open", Type: "double"},
	{Name: "high", Type: "double"},
	{Name: "low", Type: "double"},
	{Name: "close", Type: "double"},
	{Name: "volume", Type: "double"},
	{Name: "closeUsd", Type: "double"},
	{Name: "indexSymbol", Type: "varchar"},
}

func (d *CleanedDataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

func (d *CleanedDataset) Len() int {
	return len(d.records)
}

// Excluded returns the number of source rows dropped because a required field
// failed coercion.
func (d *CleanedDataset) Excluded() int {
	return d.excluded
}

// Indices returns the sorted distinct index symbols. Records without a symbol
// are not listed.
func (d *CleanedDataset) Indices() []string {
	seen := make(map[string]struct{})
	var indices []string
	for _, rec := range d.records {
		if rec.IndexSymbol == "" {
			continue
		}
		if _, ok := seen[rec.IndexSymbol]; ok {
			continue
		}
		seen[rec.IndexSymbol] = struct{}{}
		indices = append(indices, rec.IndexSymbol)
	}

	sort.Strings(indices)
	return indices
}

// Filter returns the records of a single index sorted by ascending date.
// The excluded count is carried over.
func (d *CleanedDataset) Filter(index string) *CleanedDataset {
	return &CleanedDataset{
		records:  selectIndex(d.records, NormalizeSymbol(index)),
		excluded: d.excluded,
	}
}

// ResultSet returns the dataset in its tabular form with explicit nulls.
func (d *CleanedDataset) ResultSet() *core.ResultSet {
	rows := make([]core.Row, len(d.records))
	for i, rec := range d.records {
		closeUSD := core.NullValue()
		if rec.CloseUSD.Valid {
			closeUSD = core.FloatValue(rec.CloseUSD.Float64)
		}

		rows[i] = core.Row{
			core.DateValue(rec.Date),
			core.FloatValue(rec.Open),
			core.FloatValue(rec.High),
			core.FloatValue(rec.Low),
			core.FloatValue(rec.Close),
			core.FloatValue(rec.Volume),
			closeUSD,
			core.StringValue(rec.IndexSymbol),
		}
	}

	// every row is built from Columns
	rs, _ := core.NewResultSet(Columns, rows)
	return rs
}

func selectIndex(records []Record, index string) []Record {
	selected := make([]Record, 0)
	for _, rec := range records {
		if rec.IndexSymbol == index {
			selected = append(selected, rec)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date.Before(selected[j].Date)
	})

	return selected
}

package dataset

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/marketpulse/indexq/core"
)

type field int

const (
	fieldDate field = iota
	fieldOpen
	fieldHigh
	fieldLow
	fieldClose
	fieldVolume
	fieldCloseUSD
	fieldIndex
	fieldCount
)

// normalized column names per field
var fieldAliases = map[string]field{
	"date":        fieldDate,
	"open":        fieldOpen,
	"high":        fieldHigh,
	"low":         fieldLow,
	"close":       fieldClose,
	"volume":      fieldVolume,
	"closeusd":    fieldCloseUSD,
	"index":       fieldIndex,
	"indexsymbol": fieldIndex,
	"symbol":      fieldIndex,
}

var requiredFields = []field{fieldDate, fieldOpen, fieldHigh, fieldLow, fieldClose, fieldVolume}

// NormalizeSymbol trims and upper-cases an index symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", " ", "").Replace(name)
}

// canonical column names per field, preferred over aliases
var fieldNames = [fieldCount]string{
	fieldDate:     "date",
	fieldOpen:     "open",
	fieldHigh:     "high",
	fieldLow:      "low",
	fieldClose:    "close",
	fieldVolume:   "volume",
	fieldCloseUSD: "closeusd",
	fieldIndex:    "index",
}

// columnPositions maps fields to result set columns. Absent fields are -1.
func columnPositions(rs *core.ResultSet) [fieldCount]int {
	var pos [fieldCount]int
	for f := range pos {
		pos[f] = rs.ColumnIndex(fieldNames[f])
	}

	for i, c := range rs.Columns() {
		f, ok := fieldAliases[normalizeColumnName(c.Name)]
		if ok && pos[f] < 0 {
			pos[f] = i
		}
	}

	return pos
}

func toDate(v core.Value) (time.Time, bool) {
	var t time.Time
	switch v.Kind() {
	case core.KindDate:
		t, _ = v.AsDate()
	case core.KindString:
		s, _ := v.AsString()
		parsed, ok := core.ParseDate(s)
		if !ok {
			return time.Time{}, false
		}
		t = parsed
	default:
		return time.Time{}, false
	}

	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func toFloat(v core.Value) null.Float {
	switch v.Kind() {
	case core.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) {
			return null.Float{}
		}
		return null.FloatFrom(f)
	case core.KindString:
		s, _ := v.AsString()
		f, ok := core.ParseFloat(s)
		if !ok {
			return null.Float{}
		}
		return null.FloatFrom(f)
	default:
		return null.Float{}
	}
}

func toSymbol(v core.Value) string {
	s, _ := v.Text()
	return NormalizeSymbol(s)
}

// Clean coerces the result set into records. Rows where the date or any of
// open, high, low, close and volume can't be coerced are excluded and counted.
// A non-empty selectedIndex keeps only that index, sorted by ascending date.
func Clean(rs *core.ResultSet, selectedIndex string, opts ...Option) *CleanedDataset {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	pos := columnPositions(rs)

	for _, f := range requiredFields {
		if pos[f] < 0 {
			o.logger.Warn("result is missing a required column, excluding every row",
				slog.Any("columns", core.ColumnNames(rs.Columns())),
				slog.Int("excluded_rows", rs.Len()),
			)
			o.metrics.RowsExcluded(rs.Len())
			return &CleanedDataset{records: []Record{}, excluded: rs.Len()}
		}
	}

	records := make([]Record, 0, rs.Len())
	excluded := 0

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)

		date, ok := toDate(row[pos[fieldDate]])
		open := toFloat(row[pos[fieldOpen]])
		high := toFloat(row[pos[fieldHigh]])
		low := toFloat(row[pos[fieldLow]])
		closePrice := toFloat(row[pos[fieldClose]])
		volume := toFloat(row[pos[fieldVolume]])

		if !ok || !open.Valid || !high.Valid || !low.Valid || !closePrice.Valid || !volume.Valid {
			excluded++
			o.logger.Debug("excluding row", slog.Int("row", i+1))
			continue
		}

		rec := Record{
			Date:   date,
			Open:   open.Float64,
			High:   high.Float64,
			Low:    low.Float64,
			Close:  closePrice.Float64,
			Volume: volume.Float64,
		}
		if pos[fieldCloseUSD] >= 0 {
			rec.CloseUSD = toFloat(row[pos[fieldCloseUSD]])
		}
		if pos[fieldIndex] >= 0 {
			rec.IndexSymbol = toSymbol(row[pos[fieldIndex]])
		}

		records = append(records, rec)
	}

	if excluded > 0 {
		o.metrics.RowsExcluded(excluded)
		o.logger.Debug("rows excluded during cleaning",
			slog.Int("excluded_rows", excluded),
			slog.Int("rows", len(records)),
		)
	}

	if selected := NormalizeSymbol(selectedIndex); selected != "" {
		records = selectIndex(records, selected)
	}

	return &CleanedDataset{
		records:  records,
		excluded: excluded,
	}
}

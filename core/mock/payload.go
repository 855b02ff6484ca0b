package mock

import (
	"fmt"
	"strconv"
	"time"

	"github.com/marketpulse/indexq/core"
)

// IndexColumns returns the columns of the stock index table.
func IndexColumns() []core.Column {
	return []core.Column{
		{Name: "index", Type: "varchar"},
		{Name: "date", Type: "date"},
		{Name: "open", Type: "double"},
		{Name: "high", Type: "double"},
		{Name: "low", Type: "double"},
		{Name: "close", Type: "double"},
		{Name: "adj close", Type: "double"},
		{Name: "volume", Type: "double"},
		{Name: "closeusd", Type: "double"},
	}
}

// Cells converts values to raw cells. Nil becomes a null cell.
func Cells(values ...any) []*string {
	cells := make([]*string, len(values))
	for i, val := range values {
		var s string
		switch v := val.(type) {
		case nil:
			continue
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		case time.Time:
			s = v.Format(time.DateOnly)
		default:
			s = fmt.Sprint(v)
		}
		cells[i] = &s
	}
	return cells
}

// NewPayload splits rows into result pages the way the service does: the
// first row of the first page restates the column names and every page but
// the last one carries a continuation token. A pageSize below one puts
// everything on a single page.
func NewPayload(columns []core.Column, rows [][]*string, pageSize int) []*core.ResultPage {
	header := make([]*string, len(columns))
	for i, c := range columns {
		name := c.Name
		header[i] = &name
	}

	all := append([][]*string{header}, rows...)
	if pageSize < 1 {
		pageSize = len(all)
	}

	var pages []*core.ResultPage
	for start := 0; start < len(all); start += pageSize {
		end := min(start+pageSize, len(all))
		pages = append(pages, &core.ResultPage{
			Columns: columns,
			Rows:    all[start:end],
		})
	}

	for i := 0; i < len(pages)-1; i++ {
		pages[i].NextToken = fmt.Sprintf("page-%d", i+1)
	}

	return pages
}

// IndexRow builds the raw cells of a single stock index row.
func IndexRow(index string, date string, open, high, low, closePrice, volume float64) []*string {
	return Cells(index, date, open, high, low, closePrice, closePrice, volume, closePrice)
}

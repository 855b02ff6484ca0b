package format

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/marketpulse/indexq/core"
)

var _ core.Formatter = (*CSV)(nil)

type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

// null cells become empty fields
func (cf *CSV) records(columns []core.Column, rows []core.Row) [][]string {
	data := [][]string{
		core.ColumnNames(columns),
	}
	for _, row := range rows {
		csvRow := make([]string, len(row))
		for i, val := range row {
			csvRow[i], _ = val.Text()
		}
		data = append(data, csvRow)
	}

	return data
}

func (cf *CSV) Format(columns []core.Column, rows []core.Row, _ *core.FormatterOptions) ([]byte, error) {
	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	err := w.WriteAll(cf.records(columns, rows))
	if err != nil {
		return nil, fmt.Errorf("w.WriteAll: %w", err)
	}

	return b.Bytes(), nil
}

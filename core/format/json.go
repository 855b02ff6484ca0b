package format

import (
	"encoding/json"
	"fmt"

	"github.com/marketpulse/indexq/core"
)

var _ core.Formatter = (*JSON)(nil)

type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (jf *JSON) records(columns []core.Column, rows []core.Row) []map[string]core.Value {
	data := make([]map[string]core.Value, 0, len(rows))

	for _, row := range rows {
		record := make(map[string]core.Value, len(row))
		for i, val := range row {
			var name string
			if i < len(columns) {
				name = columns[i].Name
			} else {
				name = fmt.Sprintf("<unknown-field-%d>", i)
			}
			record[name] = val
		}
		data = append(data, record)
	}

	return data
}

func (jf *JSON) Format(columns []core.Column, rows []core.Row, _ *core.FormatterOptions) ([]byte, error) {
	out, err := json.MarshalIndent(jf.records(columns, rows), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return out, nil
}

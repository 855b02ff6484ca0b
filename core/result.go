package core

import (
	"fmt"
	"strings"
)

var ErrInvalidRange = func(from, to int) error { return fmt.Errorf("invalid selection range: %d ... %d", from, to) }

// ResultSet is the materialized, read-only form of a ResultStream.
type ResultSet struct {
	columns []Column
	rows    []Row
}

// NewResultSet creates a result set from typed rows. Every row must have
// exactly one value per column.
func NewResultSet(columns []Column, rows []Row) (*ResultSet, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
	}

	return &ResultSet{
		columns: append([]Column(nil), columns...),
		rows:    append([]Row(nil), rows...),
	}, nil
}

// fill drains the iterator into the result set and closes it.
func (rs *ResultSet) fill(iter ResultStream) error {
	defer iter.Close()

	rs.columns = iter.Columns()
	rs.rows = make([]Row, 0)

	for iter.HasNext() {
		row, err := iter.Next()
		if err != nil {
			return err
		}

		rs.rows = append(rs.rows, row)
	}

	return nil
}

func (rs *ResultSet) Columns() []Column {
	return append([]Column(nil), rs.columns...)
}

func (rs *ResultSet) Len() int {
	return len(rs.rows)
}

// IsEmpty reports the "no rows matched" condition. It is not an error.
func (rs *ResultSet) IsEmpty() bool {
	return len(rs.rows) == 0
}

// ColumnIndex returns the position of the named column (case insensitive)
// or -1 if the column is absent.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (rs *ResultSet) Row(i int) Row {
	return rs.rows[i]
}

// Rows returns rows in range. Negative indexes count from the end, so
// Rows(0, -1) returns all rows and Rows(-3, -1) the last two.
func (rs *ResultSet) Rows(from, to int) ([]Row, error) {
	// validation
	if (from < 0 && to < 0) || (from >= 0 && to >= 0) {
		if from > to {
			return nil, ErrInvalidRange(from, to)
		}
	}
	// undefined -> error
	if from < 0 && to >= 0 {
		return nil, ErrInvalidRange(from, to)
	}

	// calculate range
	length := len(rs.rows)
	if from < 0 {
		from += length + 1
		if from < 0 {
			from = 0
		}
	}
	if to < 0 {
		to += length + 1
		if to < 0 {
			to = 0
		}
	}

	if from > length {
		from = length
	}
	if to > length {
		to = length
	}

	return rs.rows[from:to], nil
}

func (rs *ResultSet) Format(formatter Formatter, from, to int) ([]byte, error) {
	rows, err := rs.Rows(from, to)
	if err != nil {
		return nil, fmt.Errorf("rs.Rows: %w", err)
	}

	start := from
	if start < 0 {
		start += len(rs.rows) + 1
		if start < 0 {
			start = 0
		}
	}

	f, err := formatter.Format(rs.columns, rows, &FormatterOptions{ChunkStart: start})
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}

	return f, nil
}

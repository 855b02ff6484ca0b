package core

type (
	// FormatterOptions provide various options for formatters
	FormatterOptions struct {
		// index of the first row in the formatted chunk
		ChunkStart int
	}

	// Formatter converts columns and rows to bytes
	Formatter interface {
		Format(columns []Column, rows []Row, opts *FormatterOptions) ([]byte, error)
	}
)

type (
	// Column is a single result column as declared by the query service.
	Column struct {
		Name string
		// Type is the declared type string, e.g. "double" or "varchar".
		Type string
	}

	// Row is a decoded result row. It always holds exactly one value per column.
	Row []Value

	// ResultStream is a decoded result in a form of an iterator
	ResultStream interface {
		Columns() []Column
		Next() (Row, error)
		HasNext() bool
		Close()
	}
)

// ColumnNames returns the names of the columns in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

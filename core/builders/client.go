package builders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/marketpulse/indexq/core"
)

// Client is the default sql client used by the database/sql backends
type Client struct {
	db             *sql.DB
	typeProcessors map[string]func(any) core.Value
}

func NewClient(db *sql.DB, opts ...ClientOption) *Client {
	config := clientConfig{
		typeProcessors: make(map[string]func(any) core.Value),
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		db:             db,
		typeProcessors: config.typeProcessors,
	}
}

func (c *Client) Close() {
	_ = c.db.Close()
}

// ConvertValue is the default conversion of scanned database values.
func ConvertValue(val any) core.Value {
	switch v := val.(type) {
	case nil:
		return core.NullValue()
	case []byte:
		return core.StringValue(string(v))
	case string:
		return core.StringValue(v)
	case float64:
		return core.FloatValue(v)
	case float32:
		return core.FloatValue(float64(v))
	case int64:
		return core.FloatValue(float64(v))
	case int32:
		return core.FloatValue(float64(v))
	case int:
		return core.FloatValue(float64(v))
	case time.Time:
		return core.DateValue(v)
	default:
		return core.StringValue(fmt.Sprint(v))
	}
}

func (c *Client) getTypeProcessor(typ string) func(any) core.Value {
	proc, ok := c.typeProcessors[strings.ToLower(typ)]
	if ok {
		return proc
	}

	return ConvertValue
}

// Query executes a query and returns a result stream. Column types are the
// lower-cased database type names reported by the driver.
func (c *Client) Query(ctx context.Context, query string) (*ResultStream, error) {
	dbRows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	dbCols, err := dbRows.ColumnTypes()
	if err != nil {
		_ = dbRows.Close()
		return nil, err
	}

	// statements without a result set
	if len(dbCols) == 0 {
		if err := dbRows.Close(); err != nil {
			return nil, err
		}
		return NewResultStreamBuilder().
			WithNextFunc(NextNil()).
			Build(), nil
	}

	columns := make([]core.Column, len(dbCols))
	processors := make([]func(any) core.Value, len(dbCols))
	for i, col := range dbCols {
		columns[i] = core.Column{
			Name: col.Name(),
			Type: strings.ToLower(col.DatabaseTypeName()),
		}
		processors[i] = c.getTypeProcessor(col.DatabaseTypeName())
	}

	// rows.Next has to be called exactly once per row
	var (
		peeked  bool
		hasMore bool
	)
	hasNextFunc := func() bool {
		if !peeked {
			hasMore = dbRows.Next()
			peeked = true
		}
		return hasMore
	}

	nextFunc := func() (core.Row, error) {
		if !hasNextFunc() {
			if err := dbRows.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("no next row")
		}
		peeked = false

		values := make([]any, len(dbCols))
		pointers := make([]any, len(dbCols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := dbRows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(core.Row, len(dbCols))
		for i := range dbCols {
			row[i] = processors[i](values[i])
		}

		return row, nil
	}

	rows := NewResultStreamBuilder().
		WithNextFunc(nextFunc, hasNextFunc).
		WithColumns(columns).
		WithCloseFunc(func() {
			_ = dbRows.Close()
		}).
		Build()

	return rows, nil
}

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

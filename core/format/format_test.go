package format_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/format"
)

var (
	testColumns = []core.Column{
		{Name: "index", Type: "varchar"},
		{Name: "date", Type: "date"},
		{Name: "close", Type: "double"},
	}
	testRows = []core.Row{
		{core.StringValue("NYA"), core.DateValue(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), core.FloatValue(101.5)},
		{core.StringValue("IXIC"), core.DateValue(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), core.NullValue()},
	}
)

func TestCSV_Format(t *testing.T) {
	r := require.New(t)

	out, err := format.NewCSV().Format(testColumns, testRows, nil)
	r.NoError(err)
	r.Equal("index,date,close\nNYA,2024-01-02,101.5\nIXIC,2024-01-03,\n", string(out))
}

func TestJSON_Format(t *testing.T) {
	r := require.New(t)

	out, err := format.NewJSON().Format(testColumns, testRows, nil)
	r.NoError(err)

	var decoded []map[string]any
	r.NoError(json.Unmarshal(out, &decoded))
	r.Len(decoded, 2)
	r.Equal("NYA", decoded[0]["index"])
	r.Equal("2024-01-02", decoded[0]["date"])
	r.Equal(101.5, decoded[0]["close"])
	r.Nil(decoded[1]["close"])

	// no rows still yields a json array
	out, err = format.NewJSON().Format(testColumns, nil, nil)
	r.NoError(err)
	r.Equal("[]", string(out))
}

func TestTable_Format(t *testing.T) {
	r := require.New(t)

	out, err := format.NewTable().Format(testColumns, testRows, &core.FormatterOptions{ChunkStart: 10})
	r.NoError(err)

	rendered := string(out)
	r.Contains(rendered, "index")
	r.Contains(rendered, "NYA")
	r.Contains(rendered, "NULL")
	r.Contains(rendered, "11")
	r.Contains(rendered, "12")
}

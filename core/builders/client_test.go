package builders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/builders"
)

func TestClient_Query(t *testing.T) {
	r := require.New(t)

	db, mock, err := sqlmock.New()
	r.NoError(err)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("index").OfType("VARCHAR", ""),
		sqlmock.NewColumn("date").OfType("DATE", day),
		sqlmock.NewColumn("close").OfType("DOUBLE", 0.0),
	).
		AddRow("NYA", day, 101.5).
		AddRow([]byte("IXIC"), day, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	client := builders.NewClient(db)
	defer client.Close()

	stream, err := client.Query(context.Background(), "SELECT * FROM indices")
	r.NoError(err)

	r.Equal([]core.Column{
		{Name: "index", Type: "varchar"},
		{Name: "date", Type: "date"},
		{Name: "close", Type: "double"},
	}, stream.Columns())

	result, err := builders.Drain(stream)
	r.NoError(err)
	r.Equal([]core.Row{
		{core.StringValue("NYA"), core.DateValue(day), core.FloatValue(101.5)},
		{core.StringValue("IXIC"), core.DateValue(day), core.NullValue()},
	}, result)

	r.NoError(mock.ExpectationsWereMet())
}

func TestClient_QueryWithoutResultSet(t *testing.T) {
	r := require.New(t)

	db, mock, err := sqlmock.New()
	r.NoError(err)

	mock.ExpectQuery("CREATE TABLE").WillReturnRows(sqlmock.NewRows(nil))

	client := builders.NewClient(db)
	defer client.Close()

	stream, err := client.Query(context.Background(), "CREATE TABLE stock_market (close DOUBLE)")
	r.NoError(err)
	r.Empty(stream.Columns())
	r.False(stream.HasNext())

	_, err = stream.Next()
	r.Error(err)

	r.NoError(mock.ExpectationsWereMet())
}

func TestClient_Ping(t *testing.T) {
	r := require.New(t)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	r.NoError(err)

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	client := builders.NewClient(db)
	defer client.Close()

	r.NoError(client.Ping(context.Background()))
	r.ErrorContains(client.Ping(context.Background()), "connection refused")
}

func TestClient_QueryError(t *testing.T) {
	r := require.New(t)

	db, mock, err := sqlmock.New()
	r.NoError(err)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	client := builders.NewClient(db)
	defer client.Close()

	_, err = client.Query(context.Background(), "SELECT * FROM missing")
	r.ErrorContains(err, "relation does not exist")
}

func TestClient_CustomTypeProcessor(t *testing.T) {
	r := require.New(t)

	db, mock, err := sqlmock.New()
	r.NoError(err)

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("volume").OfType("NUMERIC", ""),
	).AddRow("1e3")
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	client := builders.NewClient(db, builders.WithCustomTypeProcessor("numeric", func(v any) core.Value {
		return core.StringValue("custom")
	}))
	defer client.Close()

	stream, err := client.Query(context.Background(), "SELECT volume FROM indices")
	r.NoError(err)

	result, err := builders.Drain(stream)
	r.NoError(err)
	r.Equal([]core.Row{{core.StringValue("custom")}}, result)
}

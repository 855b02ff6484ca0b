package integration

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tsuite "github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"

	"github.com/marketpulse/indexq/analytics"
	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/dataset"
	"github.com/marketpulse/indexq/logging"
	"github.com/marketpulse/indexq/pipeline"
	th "github.com/marketpulse/indexq/tests/testhelpers"
)

// PostgresTestSuite is the test suite for the local postgres backend.
type PostgresTestSuite struct {
	tsuite.Suite // inherit from testify suite
	// ctr is the postgres testcontainer
	ctr *th.PostgresContainer
	ctx context.Context
	// s is the query service
	s core.Service
}

// TestPostgresTestSuite is the entrypoint for go test.
//
// testify/suite can't handle parallel tests, see
// https://github.com/stretchr/testify/issues/934
func TestPostgresTestSuite(t *testing.T) {
	tsuite.Run(t, new(PostgresTestSuite))
}

func (suite *PostgresTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	ctr, err := th.NewPostgresContainer(suite.ctx, &core.ConnectionParams{
		PageSize: 3,
	})
	if err != nil {
		log.Fatal(err)
	}

	suite.ctr = ctr
	suite.s = ctr.Service // easier access to service
}

func (suite *PostgresTestSuite) TearDownSuite() {
	suite.s.Close()
	tc.CleanupContainer(suite.T(), suite.ctr)
}

func (suite *PostgresTestSuite) TestShouldFailInvalidQuery() {
	t := suite.T()

	want := "syntax error"

	_, states, err := th.GetResult(t, suite.s, "invalid sql")

	var execErr *core.ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Reason, want)
	assert.Equal(t, core.ExecutionStateFailed, states[len(states)-1])
}

func (suite *PostgresTestSuite) TestShouldReturnRows() {
	t := suite.T()

	wantCols := []string{"index", "date", "open", "high", "low", "close", "adj close", "volume", "closeusd"}

	rs, states, err := th.GetResult(t, suite.s, `SELECT * FROM stock_market ORDER BY "date", "open"`)
	assert.NoError(t, err)

	assert.Equal(t, core.ExecutionStateSucceeded, states[len(states)-1])
	assert.Equal(t, wantCols, core.ColumnNames(rs.Columns()))
	// seven rows over three pages
	assert.Equal(t, 7, rs.Len())

	first := rs.Row(0)
	assert.Equal(t, core.StringValue(" ixic"), first[0])
	assert.Equal(t, core.DateValue(time.Date(2021, 5, 27, 0, 0, 0, 0, time.UTC)), first[1])
	assert.Equal(t, core.FloatValue(13736.28), first[5])
	assert.Equal(t, core.FloatValue(5058850000), first[7])
}

func (suite *PostgresTestSuite) TestShouldReturnEmptyResult() {
	t := suite.T()

	rs, _, err := th.GetResult(t, suite.s, `SELECT * FROM stock_market WHERE "index" = 'DAX'`)
	assert.NoError(t, err)
	assert.True(t, rs.IsEmpty())
	assert.Len(t, rs.Columns(), 9)
}

func (suite *PostgresTestSuite) TestShouldCleanDataset() {
	t := suite.T()

	rs, _, err := th.GetResult(t, suite.s, `SELECT * FROM stock_market`)
	assert.NoError(t, err)

	ds := dataset.Clean(rs, "nya", dataset.WithLogger(logging.Discard()))
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 1, ds.Excluded())

	records := ds.Records()
	assert.True(t, records[0].Date.Before(records[1].Date))
	assert.False(t, records[2].CloseUSD.Valid)

	all := dataset.Clean(rs, "", dataset.WithLogger(logging.Discard()))
	assert.Equal(t, []string{"IXIC", "N225", "NYA"}, all.Indices())
}

func (suite *PostgresTestSuite) TestShouldRefreshPipeline() {
	t := suite.T()

	service, err := suite.ctr.NewService(&core.ConnectionParams{})
	assert.NoError(t, err)

	p := pipeline.New(service, core.ServiceConfig{},
		pipeline.WithLogger(logging.Discard()),
		pipeline.WithRollingWindow(2),
		pipeline.WithCoreOptions(core.WithPollInterval(50*time.Millisecond)),
	)
	defer p.Close()

	view, err := p.Refresh(suite.ctx, core.NewQueryRequest("SELECT * FROM stock_market", ""), "ixic")
	assert.NoError(t, err)

	assert.Equal(t, "IXIC", view.SelectedIndex)
	assert.Equal(t, 2, view.Selected.Len())
	assert.InDelta(t, (13736.28+13748.74)/2, view.Series.Rolling[1].Average.Float64, 1e-6)
	assert.InDelta(t, 13667.04-analytics.AxisPadding, view.Series.Bounds.YMin, 1e-6)
	assert.NotNil(t, view.Series.Correlation)
}

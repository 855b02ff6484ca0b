package core

import (
	"context"
	"time"
)

type (
	// ExecutionStatus is a single status report of the query service.
	ExecutionStatus struct {
		State ExecutionState
		// FailureReason may be set when State is failed.
		FailureReason string
	}

	// ResultPage is one page of a raw result payload. The first row of the
	// first page restates the column names. Nil cells are SQL nulls.
	ResultPage struct {
		Columns   []Column
		Rows      [][]*string
		NextToken string
	}

	// Service is the remote query service that executes queries asynchronously.
	Service interface {
		SubmitQuery(ctx context.Context, sql, database, outputLocation string) (ExecutionID, error)
		GetExecutionStatus(ctx context.Context, id ExecutionID) (*ExecutionStatus, error)
		GetResults(ctx context.Context, id ExecutionID, pageToken string) (*ResultPage, error)
		Close()
	}

	// Adapter is an object which allows to connect to a query service backend
	Adapter interface {
		Connect(params *ConnectionParams) (Service, error)
	}

	// Clock is the time source of the poller.
	Clock interface {
		Now() time.Time
		After(d time.Duration) <-chan time.Time
	}
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// QueryRequest is immutable SQL text plus the target database.
type QueryRequest struct {
	sql      string
	database string
}

// NewQueryRequest creates a request. An empty database falls back to the
// client's configured database.
func NewQueryRequest(sql, database string) QueryRequest {
	return QueryRequest{sql: sql, database: database}
}

func (r QueryRequest) SQL() string { return r.sql }

func (r QueryRequest) Database() string { return r.database }

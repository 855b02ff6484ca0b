package adapters

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/builders"
)

const (
	defaultSQLPageSize = 1000
	connectTimeout     = 10 * time.Second
)

var _ core.Service = (*sqlService)(nil)

// sqlExecution is the server side state of a query run by sqlService.
type sqlExecution struct {
	state   core.ExecutionState
	reason  string
	columns []core.Column
	pages   [][][]*string
}

// sqlService runs queries against a database/sql connection in the
// background and serves the results the way Athena does: as string cells
// split into pages, with the column names repeated in the first row.
type sqlService struct {
	client   *builders.Client
	pageSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	executions map[core.ExecutionID]*sqlExecution
}

func newSQLService(client *builders.Client, pageSize int) *sqlService {
	if pageSize <= 0 {
		pageSize = defaultSQLPageSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &sqlService{
		client:     client,
		pageSize:   pageSize,
		ctx:        ctx,
		cancel:     cancel,
		executions: make(map[core.ExecutionID]*sqlExecution),
	}
}

// connectSQLService checks the connection before serving queries from it.
// The client is closed when the database is unreachable.
func connectSQLService(client *builders.Client, pageSize int) (*sqlService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return newSQLService(client, pageSize), nil
}

// SubmitQuery starts the query and returns immediately. The database is
// selected by the connection DSN and outputs are kept in memory, so database
// and outputLocation are not used.
func (s *sqlService) SubmitQuery(ctx context.Context, sql, _, _ string) (core.ExecutionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ctx.Err(); err != nil {
		return "", fmt.Errorf("service closed: %w", err)
	}

	id := core.ExecutionID(uuid.NewString())

	s.mu.Lock()
	s.executions[id] = &sqlExecution{state: core.ExecutionStateSubmitted}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(id, sql)
	}()

	return id, nil
}

func (s *sqlService) update(id core.ExecutionID, fn func(e *sqlExecution)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.executions[id])
}

func (s *sqlService) run(id core.ExecutionID, query string) {
	s.update(id, func(e *sqlExecution) {
		e.state = core.ExecutionStateRunning
	})

	columns, pages, err := s.execute(query)
	if err != nil {
		s.update(id, func(e *sqlExecution) {
			e.state = core.ExecutionStateFailed
			e.reason = err.Error()
		})
		return
	}

	s.update(id, func(e *sqlExecution) {
		e.state = core.ExecutionStateSucceeded
		e.columns = columns
		e.pages = pages
	})
}

func (s *sqlService) execute(query string) ([]core.Column, [][][]*string, error) {
	stream, err := s.client.Query(s.ctx, query)
	if err != nil {
		return nil, nil, err
	}

	columns := stream.Columns()

	header := make([]*string, len(columns))
	for i, c := range columns {
		name := c.Name
		header[i] = &name
	}

	rows, err := builders.Drain(stream)
	if err != nil {
		return nil, nil, err
	}

	raw := make([][]*string, 0, len(rows)+1)
	raw = append(raw, header)
	for _, row := range rows {
		cells := make([]*string, len(row))
		for i, val := range row {
			text, ok := val.Text()
			if ok {
				cells[i] = &text
			}
		}
		raw = append(raw, cells)
	}

	var pages [][][]*string
	for start := 0; start < len(raw); start += s.pageSize {
		pages = append(pages, raw[start:min(start+s.pageSize, len(raw))])
	}

	return columns, pages, nil
}

func (s *sqlService) lookup(id core.ExecutionID) (sqlExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.executions[id]
	if !ok {
		return sqlExecution{}, fmt.Errorf("unknown execution: %s", id)
	}
	return *e, nil
}

func (s *sqlService) GetExecutionStatus(_ context.Context, id core.ExecutionID) (*core.ExecutionStatus, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	return &core.ExecutionStatus{
		State:         e.state,
		FailureReason: e.reason,
	}, nil
}

// GetResults serves the page addressed by pageToken. Tokens are page numbers.
func (s *sqlService) GetResults(_ context.Context, id core.ExecutionID, pageToken string) (*core.ResultPage, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if e.state != core.ExecutionStateSucceeded {
		return nil, fmt.Errorf("execution %s is %s", id, e.state)
	}

	index := 0
	if pageToken != "" {
		index, err = strconv.Atoi(pageToken)
		if err != nil || index < 1 || index >= len(e.pages) {
			return nil, fmt.Errorf("invalid page token: %q", pageToken)
		}
	}

	page := &core.ResultPage{
		Columns: e.columns,
	}
	if len(e.pages) == 0 {
		return page, nil
	}

	page.Rows = e.pages[index]
	if index+1 < len(e.pages) {
		page.NextToken = strconv.Itoa(index + 1)
	}

	return page, nil
}

// Close cancels running queries and waits for them to finish.
func (s *sqlService) Close() {
	s.cancel()
	s.wg.Wait()
	s.client.Close()
}

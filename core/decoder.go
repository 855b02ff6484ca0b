package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marketpulse/indexq/metrics"
)

var (
	errMissingMetadata = errors.New("result rows without column metadata")
	errNoNextRow       = errors.New("no next row")
)

// Decoder turns raw result pages into typed result sets.
type Decoder struct {
	service  Service
	maxPages int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewDecoder(service Service, opts ...Option) *Decoder {
	o := newOptions(opts)

	return &Decoder{
		service:  service,
		maxPages: o.maxPages,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Decode fetches every result page of a succeeded execution and returns the
// typed result set. Zero data rows yield an empty result set, not an error.
// All failures are returned as *DecodeError.
func (d *Decoder) Decode(ctx context.Context, id ExecutionID) (*ResultSet, error) {
	stream, err := d.Stream(ctx, id)
	if err != nil {
		return nil, err
	}

	rs := new(ResultSet)
	if err := rs.fill(stream); err != nil {
		return nil, err
	}

	d.metrics.RowsDecoded(rs.Len())
	d.logger.DebugContext(ctx, "result decoded",
		slog.String("execution_id", string(id)),
		slog.Int("rows", rs.Len()),
		slog.Int("columns", len(rs.columns)),
	)

	return rs, nil
}

// Stream returns the decoded rows as an iterator. Continuation pages are only
// requested once the rows of the previous page are consumed.
func (d *Decoder) Stream(ctx context.Context, id ExecutionID) (ResultStream, error) {
	s := &pagedStream{
		ctx:     ctx,
		decoder: d,
		id:      id,
	}

	first, err := s.fetch("")
	if err != nil {
		return nil, err
	}

	if len(first.Columns) == 0 && (len(first.Rows) > 1 || first.NextToken != "") {
		return nil, &DecodeError{ID: id, Err: errMissingMetadata}
	}

	s.columns = append([]Column(nil), first.Columns...)
	s.setPage(first)

	return s, nil
}

type pagedStream struct {
	ctx     context.Context
	decoder *Decoder
	id      ExecutionID
	columns []Column

	buf       [][]*string
	pos       int
	nextToken string
	pages     int
	rowNum    int
	// the first row of the result restates the column names
	headerSkipped bool

	err    error
	closed bool
}

func (s *pagedStream) fetch(token string) (*ResultPage, error) {
	if s.decoder.maxPages > 0 && s.pages >= s.decoder.maxPages {
		return nil, &DecodeError{ID: s.id, Err: fmt.Errorf("page limit of %d reached", s.decoder.maxPages)}
	}

	page, err := s.decoder.service.GetResults(s.ctx, s.id, token)
	if err != nil {
		return nil, &DecodeError{ID: s.id, Err: fmt.Errorf("service.GetResults: %w", err)}
	}
	if page == nil {
		page = &ResultPage{}
	}
	s.pages++

	return page, nil
}

func (s *pagedStream) setPage(page *ResultPage) {
	rows := page.Rows
	if !s.headerSkipped && len(rows) > 0 {
		rows = rows[1:]
		s.headerSkipped = true
	}

	s.buf = rows
	s.pos = 0
	s.nextToken = page.NextToken
}

func (s *pagedStream) Columns() []Column {
	return s.columns
}

func (s *pagedStream) HasNext() bool {
	if s.closed {
		return false
	}
	if s.err != nil {
		return true
	}

	for s.pos >= len(s.buf) {
		if s.nextToken == "" {
			return false
		}

		page, err := s.fetch(s.nextToken)
		if err != nil {
			// surfaced by the following Next call
			s.err = err
			return true
		}

		s.setPage(page)
	}

	return true
}

func (s *pagedStream) Next() (Row, error) {
	if !s.HasNext() {
		return nil, errNoNextRow
	}
	if s.err != nil {
		err := s.err
		s.Close()
		return nil, err
	}

	raw := s.buf[s.pos]
	s.pos++
	s.rowNum++

	if len(raw) != len(s.columns) {
		s.Close()
		return nil, &DecodeError{ID: s.id, Row: s.rowNum, Want: len(s.columns), Got: len(raw)}
	}

	row := make(Row, len(raw))
	for i, cell := range raw {
		row[i] = decodeCell(s.columns[i].Type, cell)
	}

	return row, nil
}

func (s *pagedStream) Close() {
	s.closed = true
	s.buf = nil
}

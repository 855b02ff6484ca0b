package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"golang.org/x/time/rate"

	"github.com/marketpulse/indexq/core"
)

// maximum page size accepted by GetQueryResults
const athenaMaxPageSize = 1000

// athenaAPI is the subset of the athena client used by the service.
type athenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

var _ core.Service = (*athenaService)(nil)

type athenaService struct {
	api      athenaAPI
	limiter  *rate.Limiter
	pageSize int32
}

func newAthenaService(api athenaAPI, pageSize int, rps float64) *athenaService {
	if pageSize <= 0 || pageSize > athenaMaxPageSize {
		pageSize = athenaMaxPageSize
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &athenaService{
		api:      api,
		limiter:  limiter,
		pageSize: int32(pageSize),
	}
}

func (s *athenaService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("limiter.Wait: %w", err)
	}
	return nil
}

func (s *athenaService) SubmitQuery(ctx context.Context, sql, database, outputLocation string) (core.ExecutionID, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
	}
	if database != "" {
		input.QueryExecutionContext = &types.QueryExecutionContext{Database: aws.String(database)}
	}
	if outputLocation != "" {
		input.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(outputLocation)}
	}

	out, err := s.api.StartQueryExecution(ctx, input)
	if err != nil {
		return "", fmt.Errorf("api.StartQueryExecution: %w", err)
	}

	id := aws.ToString(out.QueryExecutionId)
	if id == "" {
		return "", errors.New("api.StartQueryExecution: no execution id returned")
	}

	return core.ExecutionID(id), nil
}

func (s *athenaService) GetExecutionStatus(ctx context.Context, id core.ExecutionID) (*core.ExecutionStatus, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	out, err := s.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(string(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("api.GetQueryExecution: %w", err)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return nil, fmt.Errorf("api.GetQueryExecution: no status for execution %s", id)
	}

	status := out.QueryExecution.Status
	result := &core.ExecutionStatus{
		State:         core.ExecutionStateFromString(string(status.State)),
		FailureReason: aws.ToString(status.StateChangeReason),
	}
	if result.FailureReason == "" && status.AthenaError != nil {
		result.FailureReason = aws.ToString(status.AthenaError.ErrorMessage)
	}

	return result, nil
}

func (s *athenaService) GetResults(ctx context.Context, id core.ExecutionID, pageToken string) (*core.ResultPage, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	input := &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(string(id)),
		MaxResults:       aws.Int32(s.pageSize),
	}
	if pageToken != "" {
		input.NextToken = aws.String(pageToken)
	}

	out, err := s.api.GetQueryResults(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("api.GetQueryResults: %w", err)
	}

	page := &core.ResultPage{
		NextToken: aws.ToString(out.NextToken),
	}
	if out.ResultSet == nil {
		return page, nil
	}

	if meta := out.ResultSet.ResultSetMetadata; meta != nil {
		page.Columns = make([]core.Column, len(meta.ColumnInfo))
		for i, info := range meta.ColumnInfo {
			name := aws.ToString(info.Label)
			if name == "" {
				name = aws.ToString(info.Name)
			}
			page.Columns[i] = core.Column{
				Name: name,
				Type: aws.ToString(info.Type),
			}
		}
	}

	page.Rows = make([][]*string, len(out.ResultSet.Rows))
	for i, row := range out.ResultSet.Rows {
		cells := make([]*string, len(row.Data))
		for j, datum := range row.Data {
			cells[j] = datum.VarCharValue
		}
		page.Rows[i] = cells
	}

	return page, nil
}

func (s *athenaService) Close() {}

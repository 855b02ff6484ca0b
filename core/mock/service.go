package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketpulse/indexq/core"
)

var _ core.Service = (*Service)(nil)

// Submission is a recorded SubmitQuery call.
type Submission struct {
	SQL            string
	Database       string
	OutputLocation string
}

// Service is an in-memory query service with scripted states and pages.
type Service struct {
	config *serviceConfig

	mu           sync.Mutex
	submissions  []Submission
	statusCalls  int
	resultTokens []string
	closed       bool
}

func NewService(opts ...ServiceOption) *Service {
	config := &serviceConfig{
		states: []core.ExecutionState{core.ExecutionStateSucceeded},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Service{
		config: config,
	}
}

func (s *Service) SubmitQuery(_ context.Context, sql, database, outputLocation string) (core.ExecutionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.submitErr != nil {
		return "", s.config.submitErr
	}

	s.submissions = append(s.submissions, Submission{
		SQL:            sql,
		Database:       database,
		OutputLocation: outputLocation,
	})

	return core.ExecutionID(fmt.Sprintf("execution-%d", len(s.submissions))), nil
}

func (s *Service) GetExecutionStatus(ctx context.Context, _ core.ExecutionID) (*core.ExecutionStatus, error) {
	if s.config.statusSideEffect != nil {
		if err := s.config.statusSideEffect(ctx); err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.statusErr != nil {
		return nil, s.config.statusErr
	}

	index := s.statusCalls
	s.statusCalls++
	if index >= len(s.config.states) {
		index = len(s.config.states) - 1
	}

	status := &core.ExecutionStatus{State: core.ExecutionStateUnknown}
	if index >= 0 {
		status.State = s.config.states[index]
	}
	if status.State == core.ExecutionStateFailed {
		status.FailureReason = s.config.failureReason
	}

	return status, nil
}

func (s *Service) GetResults(_ context.Context, id core.ExecutionID, pageToken string) (*core.ResultPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resultTokens = append(s.resultTokens, pageToken)

	if s.config.resultsErr != nil {
		return nil, s.config.resultsErr
	}

	if len(s.config.pages) == 0 {
		return &core.ResultPage{}, nil
	}

	if pageToken == "" {
		return s.config.pages[0], nil
	}
	for i := 1; i < len(s.config.pages); i++ {
		if s.config.pages[i-1].NextToken == pageToken {
			return s.config.pages[i], nil
		}
	}

	return nil, fmt.Errorf("unknown page token %q for execution %s", pageToken, id)
}

func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Submissions returns the recorded submit calls.
func (s *Service) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// StatusCalls returns the number of answered status requests.
func (s *Service) StatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// ResultTokens returns the page tokens of all result requests in order.
func (s *Service) ResultTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resultTokens...)
}

func (s *Service) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

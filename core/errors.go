package core

import (
	"errors"
	"fmt"
)

var ErrEmptyQuery = errors.New("query text is empty")

// SubmissionError is returned when a query could not be handed to the service.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit query: %s", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ExecutionError is returned when an execution reached the failed state.
// Reason holds the service provided explanation.
type ExecutionError struct {
	ID     ExecutionID
	Reason string
}

func (e *ExecutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("execution %s failed", e.ID)
	}
	return fmt.Sprintf("execution %s failed: %s", e.ID, e.Reason)
}

// DecodeError is returned for malformed or inconsistent result payloads.
// For cell count mismatches Row is the 1-based data row (header excluded).
type DecodeError struct {
	ID   ExecutionID
	Row  int
	Want int
	Got  int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode result %s: %s", e.ID, e.Err)
	}
	return fmt.Sprintf("decode result %s: row %d has %d cells, want %d", e.ID, e.Row, e.Got, e.Want)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

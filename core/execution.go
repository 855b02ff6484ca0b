package core

import (
	"encoding/json"
	"time"
)

type (
	ExecutionID string

	// Execution tracks a single submitted query until it reaches a terminal state.
	Execution struct {
		id            ExecutionID
		state         ExecutionState
		failureReason string
		timestamp     time.Time
		timeTaken     time.Duration
	}
)

// executionPersistent is used for marshaling the execution
type executionPersistent struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	FailureReason string `json:"failure_reason,omitempty"`
	TimeTaken     int64  `json:"time_taken_us"`
	Timestamp     int64  `json:"timestamp_us"`
}

func (e *Execution) MarshalJSON() ([]byte, error) {
	return json.Marshal(&executionPersistent{
		ID:            string(e.id),
		State:         e.state.String(),
		FailureReason: e.failureReason,
		TimeTaken:     e.timeTaken.Microseconds(),
		Timestamp:     e.timestamp.UnixMicro(),
	})
}

func newExecution(id ExecutionID, now time.Time) *Execution {
	return &Execution{
		id:        id,
		state:     ExecutionStateUnknown,
		timestamp: now,
	}
}

// advance moves the execution forward. Reports of an earlier state and any
// report after a terminal state are ignored. Returns true if the state changed.
func (e *Execution) advance(state ExecutionState, now time.Time) bool {
	if e.state.IsTerminal() || state.rank() <= e.state.rank() {
		return false
	}

	e.state = state
	if state.IsTerminal() {
		e.timeTaken = now.Sub(e.timestamp)
	}
	return true
}

func (e *Execution) GetID() ExecutionID {
	return e.id
}

func (e *Execution) GetState() ExecutionState {
	return e.state
}

// GetFailureReason is only set for failed executions.
func (e *Execution) GetFailureReason() string {
	return e.failureReason
}

func (e *Execution) GetTimestamp() time.Time {
	return e.timestamp
}

func (e *Execution) GetTimeTaken() time.Duration {
	return e.timeTaken
}

package core

import "strings"

type ExecutionState int

const (
	ExecutionStateUnknown ExecutionState = iota
	ExecutionStateSubmitted
	ExecutionStateRunning
	ExecutionStateSucceeded
	ExecutionStateFailed
)

// ExecutionStateFromString also understands the state names used by Athena.
func ExecutionStateFromString(s string) ExecutionState {
	switch strings.ToLower(s) {
	case ExecutionStateSubmitted.String(), "queued":
		return ExecutionStateSubmitted
	case ExecutionStateRunning.String():
		return ExecutionStateRunning
	case ExecutionStateSucceeded.String():
		return ExecutionStateSucceeded
	case ExecutionStateFailed.String(), "cancelled", "canceled":
		return ExecutionStateFailed
	default:
		return ExecutionStateUnknown
	}
}

func (s ExecutionState) String() string {
	switch s {
	case ExecutionStateUnknown:
		return "unknown"
	case ExecutionStateSubmitted:
		return "submitted"
	case ExecutionStateRunning:
		return "running"
	case ExecutionStateSucceeded:
		return "succeeded"
	case ExecutionStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can happen.
func (s ExecutionState) IsTerminal() bool {
	return s == ExecutionStateSucceeded || s == ExecutionStateFailed
}

// rank orders states for the monotonic progression. Both terminal states share
// the highest rank.
func (s ExecutionState) rank() int {
	switch s {
	case ExecutionStateSubmitted:
		return 1
	case ExecutionStateRunning:
		return 2
	case ExecutionStateSucceeded, ExecutionStateFailed:
		return 3
	default:
		return 0
	}
}

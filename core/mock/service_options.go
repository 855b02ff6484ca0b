package mock

import (
	"context"

	"github.com/marketpulse/indexq/core"
)

type serviceConfig struct {
	states           []core.ExecutionState
	failureReason    string
	pages            []*core.ResultPage
	submitErr        error
	statusErr        error
	resultsErr       error
	statusSideEffect func(context.Context) error
}

type ServiceOption func(*serviceConfig)

// ServiceWithStates sets the sequence of states reported by consecutive status
// requests. The last state is repeated once the sequence is exhausted.
func ServiceWithStates(states ...core.ExecutionState) ServiceOption {
	return func(c *serviceConfig) {
		c.states = states
	}
}

// ServiceWithFailureReason sets the reason reported with the failed state.
func ServiceWithFailureReason(reason string) ServiceOption {
	return func(c *serviceConfig) {
		c.failureReason = reason
	}
}

// ServiceWithPages sets the result pages. Pages are chained by their NextToken.
func ServiceWithPages(pages ...*core.ResultPage) ServiceOption {
	return func(c *serviceConfig) {
		c.pages = pages
	}
}

func ServiceWithSubmitError(err error) ServiceOption {
	return func(c *serviceConfig) {
		c.submitErr = err
	}
}

func ServiceWithStatusError(err error) ServiceOption {
	return func(c *serviceConfig) {
		c.statusErr = err
	}
}

func ServiceWithResultsError(err error) ServiceOption {
	return func(c *serviceConfig) {
		c.resultsErr = err
	}
}

// ServiceWithStatusSideEffect runs fn before every status request is answered.
func ServiceWithStatusSideEffect(fn func(context.Context) error) ServiceOption {
	return func(c *serviceConfig) {
		c.statusSideEffect = fn
	}
}

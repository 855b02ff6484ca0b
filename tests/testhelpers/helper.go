// Package testhelpers provides helpers for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/logging"
)

const (
	// pollInterval is the wait between two status requests
	pollInterval = 50 * time.Millisecond
	// executionTimeout is the maximum time to wait for an execution to finish
	executionTimeout = 30 * time.Second
)

// GetContainerProvider returns the container provider type to use for the tests.
// If we detect podman is available, we use it, otherwise we use docker.
func GetContainerProvider() testcontainers.ProviderType {
	if _, err := exec.LookPath("podman"); err == nil {
		fmt.Println("Podman detected. Remember to set TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED=true;")
		return testcontainers.ProviderPodman
	}
	return testcontainers.ProviderDocker
}

// GetResult submits the query, waits for a terminal state and decodes the
// result. States holds every observed state transition.
func GetResult(t *testing.T, service core.Service, query string) (*core.ResultSet, []core.ExecutionState, error) {
	t.Helper()

	opts := []core.Option{
		core.WithLogger(logging.Discard()),
		core.WithPollInterval(pollInterval),
		core.WithPollTimeout(executionTimeout),
	}

	states := make([]core.ExecutionState, 0)
	poller := core.NewPoller(service, append(opts, core.WithStateCallback(func(state core.ExecutionState, _ *core.Execution) {
		states = append(states, state)
	}))...)

	ctx := context.Background()

	id, err := core.NewClient(service, core.ServiceConfig{}, opts...).Submit(ctx, core.NewQueryRequest(query, ""))
	require.NoError(t, err)

	if _, err := poller.AwaitCompletion(ctx, id); err != nil {
		return nil, states, err
	}

	rs, err := core.NewDecoder(service, opts...).Decode(ctx, id)
	return rs, states, err
}

// GetTestDataPath returns the path to the testdata directory.
func GetTestDataPath() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get current file path")
	}

	return filepath.Join(filepath.Dir(currentFile), "../testdata"), nil
}

// GetTestDataFile returns a file from the testdata directory.
func GetTestDataFile(filename string) (*os.File, error) {
	testDataPath, err := GetTestDataPath()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(testDataPath, filename)
	return os.Open(path)
}

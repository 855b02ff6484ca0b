package adapters

import (
	"errors"
	"fmt"
	"sync"

	"github.com/marketpulse/indexq/core"
)

var (
	errNoValidTypeAliases = errors.New("no valid type aliases provided")
	ErrUnsupportedBackend = errors.New("no backend registered for provided type alias")
)

// registeredAdapters holds implemented adapters - specific adapters register themselves in their init functions.
// The main reason is to be able to compile the binary without unsupported os/arch of specific drivers.
var (
	registeredAdapters = make(map[string]core.Adapter)
	registryMu         sync.RWMutex
)

// register registers a new adapter for specific backend
func register(adapter core.Adapter, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = adapter
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

func (*Mux) GetAdapter(typ string) (core.Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	value, ok := registeredAdapters[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, typ)
	}

	return value, nil
}

func (*Mux) AddAdapter(typ string, adapter core.Adapter) error {
	return register(adapter, typ)
}

// NewService connects to the backend selected by params.Type using the
// internal mux for adapter registration.
func NewService(params *core.ConnectionParams) (core.Service, error) {
	expanded := params.Expand()

	adapter, err := new(Mux).GetAdapter(expanded.Type)
	if err != nil {
		return nil, fmt.Errorf("Mux.GetAdapter: %w", err)
	}

	service, err := adapter.Connect(expanded)
	if err != nil {
		return nil, fmt.Errorf("adapter.Connect: %w", err)
	}

	return service, nil
}

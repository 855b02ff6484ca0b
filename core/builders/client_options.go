package builders

import (
	"strings"

	"github.com/marketpulse/indexq/core"
)

type clientConfig struct {
	typeProcessors map[string]func(any) core.Value
}

type ClientOption func(*clientConfig)

// WithCustomTypeProcessor converts values of the given database type name
// with fn instead of the default conversion.
func WithCustomTypeProcessor(typ string, fn func(any) core.Value) ClientOption {
	return func(cc *clientConfig) {
		t := strings.ToLower(typ)
		_, ok := cc.typeProcessors[t]
		if ok {
			// processor already registered for this type
			return
		}

		cc.typeProcessors[t] = fn
	}
}

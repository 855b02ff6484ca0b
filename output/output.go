// Package output writes formatted result sets to their destination.
package output

import (
	"fmt"
	"strings"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/format"
)

// Output persists a result set.
type Output interface {
	Write(rs *core.ResultSet) error
}

// FormatterFromName returns the formatter registered under name.
func FormatterFromName(name string) (core.Formatter, error) {
	switch strings.ToLower(name) {
	case "table", "":
		return format.NewTable(), nil
	case "csv":
		return format.NewCSV(), nil
	case "json":
		return format.NewJSON(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", name)
	}
}

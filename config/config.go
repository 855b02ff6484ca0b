// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/logging"
)

// Prefix of all environment variables, e.g. INDEXQ_REGION.
const Prefix = "INDEXQ"

type Config struct {
	Backend        string `envconfig:"BACKEND" default:"athena" validate:"required,oneof=athena sqlite sqlite3 postgres postgresql pg mysql"`
	Region         string `envconfig:"REGION" validate:"required_if=Backend athena"`
	OutputLocation string `envconfig:"OUTPUT_LOCATION" validate:"required_if=Backend athena"`
	Database       string `envconfig:"DATABASE"`
	// DSN is the connection string of local backends or an endpoint override
	// for athena.
	DSN string `envconfig:"DSN" validate:"required_unless=Backend athena"`
	// Query fetches the full index table.
	Query string `envconfig:"QUERY" default:"SELECT * FROM stock_market" validate:"required"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s" validate:"gt=0"`
	// PollTimeout of zero waits indefinitely.
	PollTimeout time.Duration `envconfig:"POLL_TIMEOUT" default:"10m" validate:"gte=0"`
	PageSize    int           `envconfig:"PAGE_SIZE" default:"1000" validate:"min=1"`
	MaxPages    int           `envconfig:"MAX_PAGES" default:"0" validate:"min=0"`
	APIRPS      float64       `envconfig:"API_RPS" default:"0" validate:"gte=0"`

	RollingWindow int `envconfig:"ROLLING_WINDOW" default:"10" validate:"min=1"`
	// Index is the initially selected index symbol. Empty selects the first one.
	Index string `envconfig:"INDEX"`
	// Output is a file path, "-" writes to stdout.
	Output       string `envconfig:"OUTPUT" default:"-"`
	OutputFormat string `envconfig:"OUTPUT_FORMAT" default:"table" validate:"oneof=table csv json"`

	Log LogConfig `envconfig:"LOG"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// Load reads the configuration from INDEXQ_* environment variables and
// validates it.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func (c *Config) ServiceConfig() core.ServiceConfig {
	return core.ServiceConfig{
		Region:         c.Region,
		OutputLocation: c.OutputLocation,
		Database:       c.Database,
	}
}

func (c *Config) ConnectionParams() *core.ConnectionParams {
	return &core.ConnectionParams{
		Type:              c.Backend,
		URL:               c.DSN,
		Region:            c.Region,
		OutputLocation:    c.OutputLocation,
		Database:          c.Database,
		PageSize:          c.PageSize,
		RequestsPerSecond: c.APIRPS,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}

package testhelpers

import (
	"context"

	tc "github.com/testcontainers/testcontainers-go"
	tcpsql "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/marketpulse/indexq/adapters"
	"github.com/marketpulse/indexq/core"
)

type PostgresContainer struct {
	*tcpsql.PostgresContainer
	ConnURL string
	Service core.Service
}

// NewPostgresContainer creates a new postgres container seeded with the
// stock_market table and a local query service connected to it. The
// params.URL is overwritten.
func NewPostgresContainer(ctx context.Context, params *core.ConnectionParams) (*PostgresContainer, error) {
	seedFile, err := GetTestDataFile("postgres_seed.sql")
	if err != nil {
		return nil, err
	}
	defer seedFile.Close()

	ctr, err := tcpsql.Run(
		ctx,
		"postgres:16-alpine",
		tcpsql.BasicWaitStrategies(),
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		tcpsql.WithInitScripts(seedFile.Name()),
		tcpsql.WithDatabase("dev"),
	)
	if err != nil {
		return nil, err
	}
	connURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	if params.Type == "" {
		params.Type = "postgres"
	}
	params.URL = connURL

	service, err := adapters.NewService(params)
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{
		PostgresContainer: ctr,
		ConnURL:           connURL,
		Service:           service,
	}, nil
}

// NewService helper function to create a new query service with the connection URL.
func (p *PostgresContainer) NewService(params *core.ConnectionParams) (core.Service, error) {
	params.URL = p.ConnURL
	if params.Type == "" {
		params.Type = "postgres"
	}

	return adapters.NewService(params)
}

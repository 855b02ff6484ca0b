package adapters

import (
	"database/sql"
	"fmt"
	nurl "net/url"

	_ "github.com/lib/pq"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/builders"
)

// Register client
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ core.Adapter = (*Postgres)(nil)

type Postgres struct{}

func (p *Postgres) Connect(params *core.ConnectionParams) (core.Service, error) {
	u, err := nurl.Parse(params.URL)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	service, err := connectSQLService(builders.NewClient(db), params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("unable to reach postgres database: %w", err)
	}

	return service, nil
}

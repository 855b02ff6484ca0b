package adapters

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/builders"
)

// Register client
func init() {
	_ = register(&MySQL{}, "mysql")
}

var _ core.Adapter = (*MySQL)(nil)

type MySQL struct{}

func (m *MySQL) Connect(params *core.ConnectionParams) (core.Service, error) {
	// dates are served as text, the decoder parses them
	match, err := regexp.MatchString(`[\?][\w]+=[\w-]+`, params.URL)
	if err != nil {
		return nil, err
	}
	sep := "?"
	if match {
		sep = "&"
	}

	db, err := sql.Open("mysql", params.URL+sep+"parseTime=false")
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %v", err)
	}

	service, err := connectSQLService(builders.NewClient(db), params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("unable to reach mysql database: %w", err)
	}

	return service, nil
}

//go:build (darwin && (amd64 || arm64)) || (freebsd && (386 || amd64 || arm || arm64)) || (linux && (386 || amd64 || arm || arm64 || ppc64le || riscv64 || s390x)) || (netbsd && amd64) || (openbsd && (amd64 || arm64)) || (windows && (amd64 || arm64))

package adapters

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/marketpulse/indexq/core"
	"github.com/marketpulse/indexq/core/builders"
)

// Register client
func init() {
	_ = register(&SQLite{}, "sqlite", "sqlite3")
}

var _ core.Adapter = (*SQLite)(nil)

type SQLite struct{}

func (s *SQLite) Connect(params *core.ConnectionParams) (core.Service, error) {
	db, err := sql.Open("sqlite", params.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to sqlite database: %v", err)
	}

	service, err := connectSQLService(builders.NewClient(db), params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("unable to reach sqlite database: %w", err)
	}

	return service, nil
}

// Package postgres links the PostgreSQL driver into the journal, for
// deployments that want history in a shared database.
package postgres

import (
	"context"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	_ "github.com/lib/pq"
)

// Open opens a PostgreSQL journal.
func Open(ctx context.Context, cfg *relationaldb.Config) (relationaldb.Journal, error) {
	if cfg == nil {
		cfg = relationaldb.PostgresConfig()
	}
	cfg.Driver = relationaldb.DriverPostgres
	return relationaldb.OpenJournal(ctx, cfg)
}

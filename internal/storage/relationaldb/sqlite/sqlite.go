// Package sqlite links the pure-Go SQLite driver into the journal.
// It is the default backend: no external server, one file on disk.
package sqlite

import (
	"context"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	_ "modernc.org/sqlite"
)

// Open opens a SQLite journal at cfg.Path.
func Open(ctx context.Context, cfg *relationaldb.Config) (relationaldb.Journal, error) {
	if cfg == nil {
		cfg = relationaldb.NewConfig()
	}
	cfg.Driver = relationaldb.DriverSQLite
	return relationaldb.OpenJournal(ctx, cfg)
}

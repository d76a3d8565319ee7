package config

import (
	"path/filepath"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

// Key-value backend names accepted by [database].backend.
const (
	BackendPebble  = "pebble"
	BackendBBolt   = "bbolt"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// DatabaseConfig is the [database] section: the ledger archive's
// key-value backend and compression.
type DatabaseConfig struct {
	// Backend selects the key-value store: pebble (default), bbolt,
	// leveldb, or memory for throwaway nodes.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the data directory. Backends create their own layout
	// underneath it. Ignored by the memory backend.
	Path string `toml:"path" mapstructure:"path"`

	// CacheLedgers is how many recently touched ledgers the archive
	// keeps decoded in memory. Zero means the archive default.
	CacheLedgers int `toml:"cache_ledgers" mapstructure:"cache_ledgers"`

	// Compression names the snapshot compressor: "lz4" (default) or
	// "none". The store pins the compressor it was created with.
	Compression string `toml:"compression" mapstructure:"compression"`
}

// JournalConfig is the [journal] section: the SQL journal of closed
// ledgers and applied transactions.
type JournalConfig struct {
	// Enabled turns the journal on. Without it tx-by-hash lookups only
	// reach ledgers still held in memory, and account history is
	// unavailable.
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	// Driver is "sqlite" (default) or "postgres".
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the SQLite database file. Empty places journal.db under
	// the database path.
	Path string `toml:"path" mapstructure:"path"`

	// PostgreSQL connection settings, used when Driver is "postgres".
	Host     string `toml:"host" mapstructure:"host"`
	Port     int    `toml:"port" mapstructure:"port"`
	Database string `toml:"database" mapstructure:"database"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
	SSLMode  string `toml:"ssl_mode" mapstructure:"ssl_mode"`
}

// Relational converts the section into the journal layer's config.
// dataDir anchors a defaulted SQLite path.
func (j JournalConfig) Relational(dataDir string) *relationaldb.Config {
	if j.Driver == relationaldb.DriverPostgres {
		cfg := relationaldb.PostgresConfig()
		if j.Host != "" {
			cfg.Host = j.Host
		}
		if j.Port != 0 {
			cfg.Port = j.Port
		}
		if j.Database != "" {
			cfg.Database = j.Database
		}
		if j.Username != "" {
			cfg.Username = j.Username
		}
		cfg.Password = j.Password
		if j.SSLMode != "" {
			cfg.SSLMode = j.SSLMode
		}
		return cfg
	}

	cfg := relationaldb.NewConfig()
	switch {
	case j.Path != "":
		cfg.Path = j.Path
	case dataDir != "":
		cfg.Path = filepath.Join(dataDir, "journal.db")
	}
	return cfg
}

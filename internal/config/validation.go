package config

import (
	"fmt"
	"net"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

// Validate checks the whole configuration section by section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := c.Fees.Validate(); err != nil {
		return fmt.Errorf("fees: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if !c.Node.Standalone {
		return fmt.Errorf("node: only standalone mode is supported")
	}
	return nil
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.HTTPAddr == "" && s.GRPCAddr == "" {
		return fmt.Errorf("at least one of http_addr and grpc_addr must be set")
	}
	if s.HTTPAddr != "" {
		if err := validateListenAddr(s.HTTPAddr); err != nil {
			return fmt.Errorf("http_addr: %w", err)
		}
	}
	if s.GRPCAddr != "" {
		if err := validateListenAddr(s.GRPCAddr); err != nil {
			return fmt.Errorf("grpc_addr: %w", err)
		}
	}
	if s.HTTPAddr != "" && s.HTTPAddr == s.GRPCAddr {
		return fmt.Errorf("http_addr and grpc_addr collide on %s", s.HTTPAddr)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownGrace < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if s.EnableMetrics && s.HTTPAddr == "" {
		return fmt.Errorf("enable_metrics requires http_addr")
	}
	return nil
}

// Validate checks the database section.
func (d *DatabaseConfig) Validate() error {
	switch d.Backend {
	case BackendPebble, BackendBBolt, BackendLevelDB, BackendMemory:
	case "":
		return fmt.Errorf("backend is required")
	default:
		return fmt.Errorf("unknown backend %q (pebble, bbolt, leveldb, memory)", d.Backend)
	}
	if d.Backend != BackendMemory && d.Path == "" {
		return fmt.Errorf("path is required for the %s backend", d.Backend)
	}
	if d.CacheLedgers < 0 {
		return fmt.Errorf("cache_ledgers must not be negative")
	}
	switch d.Compression {
	case "", "lz4", "none":
	default:
		return fmt.Errorf("unknown compression %q (lz4, none)", d.Compression)
	}
	return nil
}

// Validate checks the journal section. A disabled journal is never
// inspected further.
func (j *JournalConfig) Validate() error {
	if !j.Enabled {
		return nil
	}
	switch j.Driver {
	case "", relationaldb.DriverSQLite:
	case relationaldb.DriverPostgres:
		if j.Port < 0 || j.Port > 65535 {
			return fmt.Errorf("port %d out of range", j.Port)
		}
	default:
		return fmt.Errorf("unknown driver %q (sqlite, postgres)", j.Driver)
	}
	return nil
}

// Validate checks the fee schedule for values the engine cannot run
// with.
func (f *FeesConfig) Validate() error {
	if f.Base == 0 {
		return fmt.Errorf("base fee must be positive")
	}
	if f.AccountReserve == 0 {
		return fmt.Errorf("account_reserve must be positive")
	}
	if f.OfferIncrement == 0 {
		return fmt.Errorf("offer_increment must be positive")
	}
	return nil
}

// Validate checks the log section.
func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q (debug, info, warn, error)", l.Level)
	}
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown format %q (console, json)", l.Format)
	}
	return nil
}

// validateListenAddr requires a host:port form with a numeric port.
func validateListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if port == "" {
		return fmt.Errorf("listen address %q has no port", addr)
	}
	return nil
}

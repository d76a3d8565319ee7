// Package config loads and validates the swapd configuration: a TOML
// file layered over defaults, with SWAPD_ environment overrides on
// top. Every section owns its validation; Load refuses a config any
// section rejects.
package config

import (
	"time"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// Config is the complete swapd configuration, one section per concern.
type Config struct {
	Node     NodeConfig     `toml:"node" mapstructure:"node"`
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Fees     FeesConfig     `toml:"fees" mapstructure:"fees"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	// configPath remembers where the config was loaded from, for
	// diagnostics and reload.
	configPath string `toml:"-" mapstructure:"-"`
}

// DefaultConfigFile is the config file name probed in the working
// directory when no --conf flag is given.
const DefaultConfigFile = "swapd.toml"

// Path returns the file the configuration was loaded from, or the
// empty string when running on pure defaults.
func (c *Config) Path() string {
	return c.configPath
}

// NodeConfig is the [node] section: the engine's own identity and
// behavior switches.
type NodeConfig struct {
	// NetworkID guards transactions against cross-network replay. It
	// must match the NetworkID clients sign into their transactions.
	NetworkID uint32 `toml:"network_id" mapstructure:"network_id"`

	// Standalone enables manual ledger closing via the ledger_accept
	// RPC. swapd currently only runs standalone.
	Standalone bool `toml:"standalone" mapstructure:"standalone"`

	// VerifySignatures requires a valid signature on every submitted
	// transaction. Development rigs usually leave it off.
	VerifySignatures bool `toml:"verify_signatures" mapstructure:"verify_signatures"`
}

// FeesConfig is the [fees] section. All quantities are raw base units
// (one SWP is one million units).
type FeesConfig struct {
	// Base is the reference transaction fee.
	Base uint64 `toml:"base" mapstructure:"base"`

	// AccountReserve is the floor an account's native balance may
	// never be spent below.
	AccountReserve uint64 `toml:"account_reserve" mapstructure:"account_reserve"`

	// OfferIncrement is the baseline funded into every new offer
	// entry, locked there for the record's lifetime.
	OfferIncrement uint64 `toml:"offer_increment" mapstructure:"offer_increment"`
}

// Schedule converts the section into the engine's fee schedule.
func (f FeesConfig) Schedule() amount.Fees {
	return amount.Fees{
		Base:      amount.New(f.Base),
		Reserve:   amount.New(f.AccountReserve),
		Increment: amount.New(f.OfferIncrement),
	}
}

// LogConfig is the [log] section.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" mapstructure:"level"`

	// Format is "console" for human-readable output or "json" for
	// structured log shipping.
	Format string `toml:"format" mapstructure:"format"`
}

// ServerConfig is the [server] section: the listening surfaces.
type ServerConfig struct {
	// HTTPAddr is the combined JSON-RPC and WebSocket listener. Empty
	// disables the HTTP surface entirely.
	HTTPAddr string `toml:"http_addr" mapstructure:"http_addr"`

	// GRPCAddr is the gRPC query service listener. Empty disables it.
	GRPCAddr string `toml:"grpc_addr" mapstructure:"grpc_addr"`

	// CORSOrigins lists the origins allowed to call the HTTP API from
	// a browser. ["*"] allows any origin.
	CORSOrigins []string `toml:"cors_origins" mapstructure:"cors_origins"`

	// ReadTimeout and WriteTimeout bound individual HTTP exchanges.
	// WriteTimeout does not apply to upgraded WebSocket connections.
	ReadTimeout  time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`

	// ShutdownGrace is how long a stopping server waits for in-flight
	// requests before cutting them off.
	ShutdownGrace time.Duration `toml:"shutdown_grace" mapstructure:"shutdown_grace"`

	// EnableMetrics exposes Prometheus metrics at /metrics on the
	// HTTP listener.
	EnableMetrics bool `toml:"enable_metrics" mapstructure:"enable_metrics"`
}

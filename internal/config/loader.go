package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the configuration in priority order: defaults, then the
// TOML file at path, then SWAPD_ environment variables. An empty path
// probes for swapd.toml in the working directory and falls back to
// pure defaults when it is absent; a named path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	loadedFrom := ""
	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		loadedFrom = path
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			v.SetConfigFile(DefaultConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", DefaultConfigFile, err)
			}
			loadedFrom = DefaultConfigFile
		}
	}

	// SWAPD_SERVER_HTTP_ADDR overrides server.http_addr, and so on.
	v.SetEnvPrefix("SWAPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.configPath = loadedFrom

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration. The defaults always
// validate; a failure here is a programming error.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: defaults do not validate: %v", err))
	}
	return &cfg
}

// WriteExample writes a fully commented example configuration to
// path, refusing to overwrite an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	return os.WriteFile(path, []byte(exampleConfig), 0o644)
}

const exampleConfig = `# swapd configuration. Every setting shown here carries its default;
# delete what you do not change. Environment variables override the
# file: SWAPD_SERVER_HTTP_ADDR overrides server.http_addr, and so on.

[node]
network_id = 0
standalone = true
verify_signatures = false

[server]
http_addr = "127.0.0.1:5005"   # JSON-RPC at /, WebSocket at /ws
grpc_addr = "127.0.0.1:50051"  # empty string disables gRPC
cors_origins = ["*"]
read_timeout = "30s"
write_timeout = "30s"
shutdown_grace = "10s"
enable_metrics = true

[database]
backend = "pebble"             # pebble | bbolt | leveldb | memory
path = "data"
cache_ledgers = 0              # 0 keeps the archive default
compression = "lz4"            # lz4 | none

[journal]
enabled = true
driver = "sqlite"              # sqlite | postgres
# path = "data/journal.db"
# host = "localhost"
# port = 5432
# database = "swapd"
# username = "swapd"
# password = ""
# ssl_mode = "prefer"

[fees]
base = 10                      # reference fee, base units
account_reserve = 10000000     # 10 SWP
offer_increment = 2000000      # 2 SWP locked per offer entry

[log]
level = "info"                 # debug | info | warn | error
format = "console"             # console | json
`

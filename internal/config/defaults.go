package config

import "github.com/spf13/viper"

// setDefaults registers every default value. The file and the
// environment only need to name what they change.
func setDefaults(v *viper.Viper) {
	// [node]
	v.SetDefault("node.network_id", 0)
	v.SetDefault("node.standalone", true)
	v.SetDefault("node.verify_signatures", false)

	// [server]
	v.SetDefault("server.http_addr", "127.0.0.1:5005")
	v.SetDefault("server.grpc_addr", "127.0.0.1:50051")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_grace", "10s")
	v.SetDefault("server.enable_metrics", true)

	// [database]
	v.SetDefault("database.backend", BackendPebble)
	v.SetDefault("database.path", "data")
	v.SetDefault("database.cache_ledgers", 0)
	v.SetDefault("database.compression", "lz4")

	// [journal]
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.ssl_mode", "prefer")

	// [fees] — raw base units; one SWP is one million units.
	v.SetDefault("fees.base", 10)
	v.SetDefault("fees.account_reserve", 10_000_000)
	v.SetDefault("fees.offer_increment", 2_000_000)

	// [log]
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

package relationaldb

import (
	"fmt"
	"net/url"
	"time"
)

// Supported driver names. The names match what the driver packages
// register with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains journal database settings.
type Config struct {
	// Driver selects the backend: "sqlite" (default) or "postgres".
	Driver string `json:"driver"`

	// ConnectionString overrides the built DSN when set.
	ConnectionString string `json:"connection_string"`

	// Path is the SQLite database file. ":memory:" keeps the journal
	// in process memory.
	Path string `json:"path"`

	// PostgreSQL connection settings.
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`

	// Connection pool settings.
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// DefaultTimeout bounds individual journal operations.
	DefaultTimeout time.Duration `json:"default_timeout"`
}

// NewConfig returns a Config with SQLite defaults.
func NewConfig() *Config {
	return &Config{
		Driver:          DriverSQLite,
		Path:            "journal.db",
		SSLMode:         "prefer",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// PostgresConfig returns a Config with PostgreSQL defaults.
func PostgresConfig() *Config {
	return &Config{
		Driver:          DriverPostgres,
		Host:            "localhost",
		Port:            5432,
		Database:        "swapd",
		Username:        "swapd",
		SSLMode:         "prefer",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, "sqlite3":
		c.Driver = DriverSQLite
		if c.Path == "" && c.ConnectionString == "" {
			return ErrMissingPath
		}
	case DriverPostgres, "postgresql":
		c.Driver = DriverPostgres
		if c.ConnectionString == "" {
			if c.Host == "" {
				return ErrMissingHost
			}
			if c.Port <= 0 || c.Port > 65535 {
				return ErrInvalidPort
			}
			if c.Database == "" {
				return ErrMissingDatabase
			}
			if c.Username == "" {
				return ErrMissingUsername
			}
			switch c.SSLMode {
			case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			default:
				return ErrInvalidSSLMode
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns < 0 {
		return ErrInvalidMaxIdleConns
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// BuildConnectionString builds the driver DSN from the config.
func (c *Config) BuildConnectionString() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	switch c.Driver {
	case DriverSQLite:
		return c.buildSQLiteConnectionString(), nil
	case DriverPostgres:
		return c.buildPostgresConnectionString(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}
}

func (c *Config) buildSQLiteConnectionString() string {
	if c.Path == ":memory:" {
		return ":memory:"
	}
	// modernc's pragma DSN syntax.
	params := url.Values{}
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	return fmt.Sprintf("file:%s?%s", c.Path, params.Encode())
}

func (c *Config) buildPostgresConnectionString() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	params.Set("connect_timeout", "30")
	params.Set("application_name", "swapd-journal")

	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: params.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	} else {
		u.User = url.User(c.Username)
	}
	return u.String()
}

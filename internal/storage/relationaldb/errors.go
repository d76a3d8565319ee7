package relationaldb

import "errors"

var (
	// Configuration errors.
	ErrInvalidDriver       = errors.New("unsupported database driver")
	ErrMissingPath         = errors.New("sqlite database path is required")
	ErrMissingHost         = errors.New("database host is required")
	ErrMissingDatabase     = errors.New("database name is required")
	ErrMissingUsername     = errors.New("database username is required")
	ErrInvalidPort         = errors.New("invalid database port")
	ErrInvalidSSLMode      = errors.New("invalid SSL mode")
	ErrInvalidMaxOpenConns = errors.New("max open connections must be >= 0")
	ErrInvalidMaxIdleConns = errors.New("max idle connections must be >= 0")
	ErrInvalidTimeout      = errors.New("timeout must be positive")

	// Runtime errors.
	ErrJournalClosed = errors.New("journal is closed")
	ErrNotFound      = errors.New("not found in journal")
)

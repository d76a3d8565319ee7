package keyValueDb

import "errors"

var (
	// ErrDBClosed is returned when operating on a closed store.
	ErrDBClosed = errors.New("keyValueDb is closed")

	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDBNotFound is returned by a Manager for an unknown store name.
	ErrDBNotFound = errors.New("keyValueDb not found")
)

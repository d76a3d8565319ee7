package keyValueDb

// Manager handles the lifecycle of named stores within one backend.
// Each name maps to an isolated keyspace; how that isolation is
// realized (bucket, directory, file) is up to the backend.
type Manager interface {
	// OpenDB opens or creates the store with the given name. Opening
	// the same name twice returns a handle to the same store.
	OpenDB(name string) (DB, error)

	// CloseDB closes a specific store.
	CloseDB(name string) error

	// Close closes all stores held by the manager.
	Close() error
}

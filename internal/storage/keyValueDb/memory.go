package keyValueDb

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// Memory is a map-backed DB for tests and ephemeral nodes. Nothing
// survives process exit.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrDBClosed
	}
	value, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) Write(ctx context.Context, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrDBClosed
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *Memory) Batch(ctx context.Context, ops []BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrDBClosed
	}
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		case BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Iterator snapshots the matching entries, so writes made while
// iterating are not observed.
func (m *Memory) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrDBClosed
	}

	var keys [][]byte
	for k := range m.data {
		key := []byte(k)
		if start != nil && bytes.Compare(key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(key, end) >= 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = append([]byte(nil), m.data[string(k)]...)
	}

	return &memoryIterator{keys: keys, values: values, position: -1}, nil
}

// Close marks the store closed. Further operations fail with
// ErrDBClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryIterator struct {
	keys     [][]byte
	values   [][]byte
	position int
}

func (it *memoryIterator) Next() bool {
	it.position++
	return it.position < len(it.keys)
}

func (it *memoryIterator) Key() []byte {
	if it.position < 0 || it.position >= len(it.keys) {
		return nil
	}
	return it.keys[it.position]
}

func (it *memoryIterator) Value() []byte {
	if it.position < 0 || it.position >= len(it.values) {
		return nil
	}
	return it.values[it.position]
}

func (it *memoryIterator) Error() error { return nil }
func (it *memoryIterator) Close() error { return nil }

// MemoryManager hands out isolated Memory stores by name.
type MemoryManager struct {
	mu  sync.Mutex
	dbs map[string]*Memory
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{dbs: make(map[string]*Memory)}
}

func (m *MemoryManager) OpenDB(name string) (DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return db, nil
	}
	db := NewMemory()
	m.dbs[name] = db
	return db, nil
}

func (m *MemoryManager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return ErrDBNotFound
	}
	db.Close()
	delete(m.dbs, name)
	return nil
}

func (m *MemoryManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, db := range m.dbs {
		db.Close()
		delete(m.dbs, name)
	}
	return nil
}

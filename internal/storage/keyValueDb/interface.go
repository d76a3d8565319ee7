// Package keyValueDb defines the key-value store the node persists
// through, with interchangeable backends. All backends expose the same
// ordered byte-key semantics: iterators walk keys in ascending byte
// order over the half-open range [start, end), and a nil bound leaves
// that side open.
package keyValueDb

import (
	"context"
)

// DB is the operation set every backend must support.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies the operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end) in ascending order.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator walks entries one Next call at a time. Key and Value return
// slices owned by the iterator's current position; callers that retain
// them across Next or Close must copy.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is a single put or delete inside a batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

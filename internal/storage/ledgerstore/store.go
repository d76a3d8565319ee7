// Package ledgerstore persists closed ledgers through a key-value
// backend. Each ledger is stored as its raw header plus compressed
// state and transaction snapshots; loads verify the snapshot digests
// against the header before handing the ledger back. A small LRU keeps
// recently touched ledgers in memory.
package ledgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb"
	"github.com/LeJamon/goswapd/internal/storage/ledgerstore/compression"
)

var (
	// ErrOpenLedger is returned when saving a ledger that has not
	// closed yet.
	ErrOpenLedger = errors.New("ledgerstore: ledger is still open")

	// ErrLedgerNotFound is returned when the requested ledger is not
	// in the store.
	ErrLedgerNotFound = errors.New("ledgerstore: ledger not found")

	// ErrCorruptSnapshot is returned when persisted ledger data cannot
	// be decoded.
	ErrCorruptSnapshot = errors.New("ledgerstore: corrupt snapshot")

	// ErrCompressionMismatch is returned when opening a store that was
	// written with a different compressor.
	ErrCompressionMismatch = errors.New("ledgerstore: compression mismatch")
)

// Key layout: one tag byte, then the big-endian sequence or the ledger
// hash. The latest marker and the compression marker are single keys.
const (
	tagHeader    = 'h'
	tagState     = 's'
	tagTxs       = 't'
	tagHashIndex = 'H'
)

var (
	keyLatest      = []byte{'l'}
	keyCompression = []byte{'c'}
)

func seqKey(tag byte, seq uint32) []byte {
	k := make([]byte, 5)
	k[0] = tag
	binary.BigEndian.PutUint32(k[1:], seq)
	return k
}

func seqBytes(seq uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, seq)
}

func hashKey(hash [32]byte) []byte {
	k := make([]byte, 33)
	k[0] = tagHashIndex
	copy(k[1:], hash[:])
	return k
}

// Options configures a Store.
type Options struct {
	// CacheSize is the number of ledgers kept in memory. Defaults to
	// 256.
	CacheSize int

	// Compression names the registered compressor for state and tx
	// snapshots. Defaults to "lz4".
	Compression string
}

// Store archives closed ledgers. Safe for concurrent use as long as
// the underlying DB is.
type Store struct {
	db    keyValueDb.DB
	comp  compression.Compressor
	cache *lru.Cache[uint32, *ledger.Ledger]
}

// New opens a ledger store over db. The compressor choice is recorded
// in the store on first use; reopening with a different one fails.
func New(ctx context.Context, db keyValueDb.DB, opts Options) (*Store, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Compression == "" {
		opts.Compression = "lz4"
	}

	comp, err := compression.Get(opts.Compression)
	if err != nil {
		return nil, err
	}

	recorded, err := db.Read(ctx, keyCompression)
	switch {
	case err == nil:
		if string(recorded) != comp.Name() {
			return nil, fmt.Errorf("%w: store has %q, configured %q",
				ErrCompressionMismatch, recorded, comp.Name())
		}
	case errors.Is(err, keyValueDb.ErrKeyNotFound):
		if err := db.Write(ctx, keyCompression, []byte(comp.Name())); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	cache, err := lru.New[uint32, *ledger.Ledger](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, comp: comp, cache: cache}, nil
}

// SaveLedger archives a closed ledger. Saving the same sequence again
// overwrites the previous snapshot.
func (s *Store) SaveLedger(ctx context.Context, l *ledger.Ledger) error {
	if !l.Closed() {
		return ErrOpenLedger
	}
	h := l.Header()

	state := make(map[[32]byte][]byte)
	if err := l.ForEach(func(key [32]byte, data []byte) bool {
		state[key] = data
		return true
	}); err != nil {
		return err
	}

	stateBlock, err := s.comp.Compress(encodeState(state))
	if err != nil {
		return err
	}
	txsBlock, err := s.comp.Compress(encodeTxs(l.Txs()))
	if err != nil {
		return err
	}

	ops := []keyValueDb.BatchOperation{
		{Type: keyValueDb.BatchPut, Key: seqKey(tagHeader, h.Sequence), Value: h.Serialize()},
		{Type: keyValueDb.BatchPut, Key: seqKey(tagState, h.Sequence), Value: stateBlock},
		{Type: keyValueDb.BatchPut, Key: seqKey(tagTxs, h.Sequence), Value: txsBlock},
		{Type: keyValueDb.BatchPut, Key: hashKey(h.Hash), Value: seqBytes(h.Sequence)},
	}

	latest, err := s.LatestSeq(ctx)
	if err != nil && !errors.Is(err, ErrLedgerNotFound) {
		return err
	}
	if errors.Is(err, ErrLedgerNotFound) || h.Sequence > latest {
		ops = append(ops, keyValueDb.BatchOperation{
			Type: keyValueDb.BatchPut, Key: keyLatest, Value: seqBytes(h.Sequence),
		})
	}

	if err := s.db.Batch(ctx, ops); err != nil {
		return err
	}

	s.cache.Add(h.Sequence, l)
	return nil
}

// LoadLedger returns the closed ledger with the given sequence,
// rebuilding and verifying it from the snapshot on a cache miss.
func (s *Store) LoadLedger(ctx context.Context, seq uint32) (*ledger.Ledger, error) {
	if l, ok := s.cache.Get(seq); ok {
		return l, nil
	}

	rawHeader, err := s.db.Read(ctx, seqKey(tagHeader, seq))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: sequence %d", ErrLedgerNotFound, seq)
		}
		return nil, err
	}
	h, err := header.Deserialize(rawHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	state, err := s.loadState(ctx, seq)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadTxs(ctx, seq)
	if err != nil {
		return nil, err
	}

	l, err := ledger.Restore(h, state, txs)
	if err != nil {
		return nil, err
	}

	s.cache.Add(seq, l)
	return l, nil
}

// LoadLedgerByHash resolves a header hash through the hash index and
// loads that ledger.
func (s *Store) LoadLedgerByHash(ctx context.Context, hash [32]byte) (*ledger.Ledger, error) {
	raw, err := s.db.Read(ctx, hashKey(hash))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: hash %x", ErrLedgerNotFound, hash)
		}
		return nil, err
	}
	if len(raw) != 4 {
		return nil, fmt.Errorf("%w: bad hash index entry", ErrCorruptSnapshot)
	}
	return s.LoadLedger(ctx, binary.BigEndian.Uint32(raw))
}

// LatestSeq returns the highest archived sequence.
func (s *Store) LatestSeq(ctx context.Context) (uint32, error) {
	raw, err := s.db.Read(ctx, keyLatest)
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return 0, ErrLedgerNotFound
		}
		return 0, err
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("%w: bad latest marker", ErrCorruptSnapshot)
	}
	return binary.BigEndian.Uint32(raw), nil
}

// HasLedger reports whether a ledger with the given sequence is
// archived.
func (s *Store) HasLedger(ctx context.Context, seq uint32) (bool, error) {
	_, err := s.db.Read(ctx, seqKey(tagHeader, seq))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Store) loadState(ctx context.Context, seq uint32) (map[[32]byte][]byte, error) {
	block, err := s.db.Read(ctx, seqKey(tagState, seq))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: missing state for ledger %d", ErrCorruptSnapshot, seq)
		}
		return nil, err
	}
	raw, err := s.comp.Decompress(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return decodeState(raw)
}

func (s *Store) loadTxs(ctx context.Context, seq uint32) ([]ledger.TxRecord, error) {
	block, err := s.db.Read(ctx, seqKey(tagTxs, seq))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: missing txs for ledger %d", ErrCorruptSnapshot, seq)
		}
		return nil, err
	}
	raw, err := s.comp.Decompress(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return decodeTxs(raw)
}

// Package ledger holds the chain state between closes. A Ledger is a
// flat keyed map of serialized records plus a header; the transaction
// engine reads and writes it through the view methods, and Close seals
// the result into a hashed, immutable snapshot that seeds the next
// open ledger.
package ledger

import (
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

var (
	// ErrClosed is returned when writing to a sealed ledger.
	ErrClosed = errors.New("ledger: closed")
	// ErrEntryExists is returned when inserting over an existing key.
	ErrEntryExists = errors.New("ledger: entry already exists")
	// ErrEntryNotFound is returned when reading, updating or erasing a
	// missing key.
	ErrEntryNotFound = errors.New("ledger: entry not found")
)

// TxRecord is one applied transaction with its metadata, kept with the
// ledger it was applied in.
type TxRecord struct {
	Hash [32]byte
	Tx   []byte
	Meta []byte
}

// Ledger is one ledger instance, open or closed. All methods are safe
// for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	state     map[[32]byte][]byte
	txs       []TxRecord
	header    header.Header
	destroyed amount.Amount
	closed    bool
}

// NewOpen creates an empty open ledger. Ordinary ledgers are built
// with NewFrom; NewOpen exists for genesis construction.
func NewOpen(seq uint32, supply amount.Amount, parentHash [32]byte, parentCloseTime uint32) *Ledger {
	return &Ledger{
		state: make(map[[32]byte][]byte),
		header: header.Header{
			Sequence:        seq,
			TotalSupply:     supply,
			ParentHash:      parentHash,
			ParentCloseTime: parentCloseTime,
		},
	}
}

// NewFrom creates the next open ledger from a closed parent, carrying
// over the parent's state.
func NewFrom(parent *Ledger) (*Ledger, error) {
	parent.mu.RLock()
	defer parent.mu.RUnlock()

	if !parent.closed {
		return nil, errors.New("ledger: parent not closed")
	}

	state := make(map[[32]byte][]byte, len(parent.state))
	for k, v := range parent.state {
		state[k] = append([]byte(nil), v...)
	}

	return &Ledger{
		state: state,
		header: header.Header{
			Sequence:        parent.header.Sequence + 1,
			TotalSupply:     parent.header.TotalSupply,
			ParentHash:      parent.header.Hash,
			ParentCloseTime: parent.header.CloseTime,
		},
	}, nil
}

// Sequence returns the ledger sequence number.
func (l *Ledger) Sequence() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Sequence
}

// Hash returns the header hash; zero until the ledger closes.
func (l *Ledger) Hash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header.Hash
}

// Header returns a copy of the current header.
func (l *Ledger) Header() header.Header {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.header
}

// Closed reports whether the ledger has been sealed.
func (l *Ledger) Closed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// SetValidated marks the ledger validated. Validation is one way.
func (l *Ledger) SetValidated() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.header.Validated = true
}

// Fees returns the fee schedule from the on-ledger fee settings record,
// falling back to defaults when the record is missing or unreadable.
func (l *Ledger) Fees() amount.Fees {
	data, err := l.Read(keylet.Fees())
	if err != nil {
		return amount.DefaultFees()
	}
	fs, err := record.ParseFeeSettings(data)
	if err != nil {
		return amount.DefaultFees()
	}
	return fs.Fees()
}

// Read returns a copy of the entry's serialized record.
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, ok := l.state[k.Key]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether the entry is present.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.state[k.Key]
	return ok, nil
}

// Insert adds a new entry.
func (l *Ledger) Insert(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if _, ok := l.state[k.Key]; ok {
		return ErrEntryExists
	}
	l.state[k.Key] = append([]byte(nil), data...)
	return nil
}

// Update replaces an existing entry.
func (l *Ledger) Update(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if _, ok := l.state[k.Key]; !ok {
		return ErrEntryNotFound
	}
	l.state[k.Key] = append([]byte(nil), data...)
	return nil
}

// Erase removes an existing entry.
func (l *Ledger) Erase(k keylet.Keylet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if _, ok := l.state[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(l.state, k.Key)
	return nil
}

// DestroyUnits accumulates native units removed from circulation,
// typically transaction fees. Close deducts the total from the supply.
func (l *Ledger) DestroyUnits(a amount.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.destroyed += a
}

// ForEach calls fn for every entry until fn returns false. Iteration
// order is unspecified.
func (l *Ledger) ForEach(fn func(key [32]byte, data []byte) bool) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for k, v := range l.state {
		if !fn(k, append([]byte(nil), v...)) {
			return nil
		}
	}
	return nil
}

// EntryCount returns the number of state entries.
func (l *Ledger) EntryCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.state)
}

// RecordTx appends an applied transaction to the ledger's transaction
// set. The set is sealed with the ledger at close.
func (l *Ledger) RecordTx(hash [32]byte, tx, meta []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.txs = append(l.txs, TxRecord{
		Hash: hash,
		Tx:   append([]byte(nil), tx...),
		Meta: append([]byte(nil), meta...),
	})
	return nil
}

// Txs returns the applied transactions in application order.
func (l *Ledger) Txs() []TxRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]TxRecord(nil), l.txs...)
}

// TxCount returns the number of applied transactions.
func (l *Ledger) TxCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Close seals the ledger: the state and transaction digests are
// computed, destroyed units leave the supply, and the header hash is
// fixed. A closed ledger rejects all further writes.
func (l *Ledger) Close(closeTime uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if l.destroyed > l.header.TotalSupply {
		return errors.New("ledger: destroyed units exceed supply")
	}
	l.header.TotalSupply -= l.destroyed
	l.destroyed = 0

	l.header.AccountHash = l.stateHashLocked()
	l.header.TxHash = l.txHashLocked()
	l.header.CloseTime = closeTime
	l.header.CloseTimeResolution = header.DefaultCloseTimeResolution
	l.header.Hash = header.CalculateHash(l.header)
	l.header.Closed = true
	l.closed = true
	return nil
}

// stateHashLocked digests the state as key/value pairs in key order.
// An empty state digests to zero.
func (l *Ledger) stateHashLocked() [32]byte {
	if len(l.state) == 0 {
		return [32]byte{}
	}

	keys := make([][32]byte, 0, len(l.state))
	for k := range l.state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	inputs := make([][]byte, 0, 2*len(keys)+1)
	inputs = append(inputs, crypto.HashPrefixLeafNode.Bytes())
	for i := range keys {
		inputs = append(inputs, keys[i][:], l.state[keys[i]])
	}
	return crypto.Sha512Half(inputs...)
}

// txHashLocked digests the applied transaction hashes in application
// order. An empty set digests to zero.
func (l *Ledger) txHashLocked() [32]byte {
	if len(l.txs) == 0 {
		return [32]byte{}
	}

	inputs := make([][]byte, 0, len(l.txs)+1)
	inputs = append(inputs, crypto.HashPrefixTxNode.Bytes())
	for i := range l.txs {
		inputs = append(inputs, l.txs[i].Hash[:])
	}
	return crypto.Sha512Half(inputs...)
}

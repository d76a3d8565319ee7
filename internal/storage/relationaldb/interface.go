// Package relationaldb keeps the queryable journal of closed ledgers
// and applied transactions. The journal is derived data: the ledger
// store remains the source of truth, this layer exists so history can
// be asked for by account, hash or range without replaying snapshots.
package relationaldb

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"
)

// LedgerIndex is a ledger sequence number.
type LedgerIndex uint32

// Hash is a 256-bit hash.
type Hash [32]byte

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 64 {
		return h, fmt.Errorf("invalid hash length: expected 64, got %d", len(s))
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hex string: %w", err)
	}
	copy(h[:], decoded)
	return h, nil
}

// LedgerInfo is one closed ledger's journal row.
type LedgerInfo struct {
	Hash            Hash        `json:"hash"`
	Sequence        LedgerIndex `json:"sequence"`
	ParentHash      Hash        `json:"parent_hash"`
	AccountHash     Hash        `json:"account_hash"`
	TxHash          Hash        `json:"tx_hash"`
	TotalSupply     uint64      `json:"total_supply"`
	CloseTime       time.Time   `json:"close_time"`
	ParentCloseTime time.Time   `json:"parent_close_time"`
	CloseTimeRes    int32       `json:"close_time_res"`
}

// TxInfo is one applied transaction's journal row. TxnSeq is the
// transaction's position within its ledger.
type TxInfo struct {
	Hash      Hash        `json:"hash"`
	LedgerSeq LedgerIndex `json:"ledger_seq"`
	TxnSeq    uint32      `json:"txn_seq"`
	Account   string      `json:"account"`
	TxType    string      `json:"tx_type"`
	Result    string      `json:"result"`
	RawTxn    []byte      `json:"raw_txn"`
	TxnMeta   []byte      `json:"txn_meta"`
}

// LedgerRange is the closed interval of journaled sequences.
type LedgerRange struct {
	Min LedgerIndex `json:"min"`
	Max LedgerIndex `json:"max"`
}

// AccountTxQuery selects an account's journaled transactions.
// MaxLedger zero leaves the upper bound open. Results come newest
// first unless OldestFirst is set.
type AccountTxQuery struct {
	Account     string      `json:"account"`
	MinLedger   LedgerIndex `json:"min_ledger"`
	MaxLedger   LedgerIndex `json:"max_ledger"`
	Limit       uint32      `json:"limit"`
	OldestFirst bool        `json:"oldest_first"`
}

// Journal is the journal's operation set. Implementations are safe
// for concurrent use.
type Journal interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// SaveLedger journals a closed ledger and its transactions in one
	// database transaction. Re-journaling a sequence replaces the
	// previous rows.
	SaveLedger(ctx context.Context, info *LedgerInfo, txs []TxInfo) error

	LedgerBySeq(ctx context.Context, seq LedgerIndex) (*LedgerInfo, error)
	LedgerByHash(ctx context.Context, hash Hash) (*LedgerInfo, error)
	NewestLedger(ctx context.Context) (*LedgerInfo, error)
	SeqRange(ctx context.Context) (*LedgerRange, error)

	TxByHash(ctx context.Context, hash Hash) (*TxInfo, error)
	AccountTxs(ctx context.Context, q AccountTxQuery) ([]TxInfo, error)
	TxCount(ctx context.Context) (int64, error)

	// DeleteBefore prunes ledgers and transactions with sequence
	// strictly below seq.
	DeleteBefore(ctx context.Context, seq LedgerIndex) error
}

package ledger

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/ledger/header"
)

// ErrSnapshotMismatch is returned when persisted ledger parts do not
// reproduce the digests sealed in their header.
var ErrSnapshotMismatch = errors.New("ledger: snapshot does not match header")

// Restore rebuilds a closed ledger from persisted parts. The state and
// transaction digests are recomputed and checked against the header, so
// a corrupted or truncated snapshot cannot pass as a sealed ledger.
func Restore(h header.Header, state map[[32]byte][]byte, txs []TxRecord) (*Ledger, error) {
	l := &Ledger{
		state: make(map[[32]byte][]byte, len(state)),
	}
	for k, v := range state {
		l.state[k] = append([]byte(nil), v...)
	}
	for _, tr := range txs {
		l.txs = append(l.txs, TxRecord{
			Hash: tr.Hash,
			Tx:   append([]byte(nil), tr.Tx...),
			Meta: append([]byte(nil), tr.Meta...),
		})
	}

	if got := l.stateHashLocked(); got != h.AccountHash {
		return nil, fmt.Errorf("%w: state digest %x, header %x", ErrSnapshotMismatch, got, h.AccountHash)
	}
	if got := l.txHashLocked(); got != h.TxHash {
		return nil, fmt.Errorf("%w: tx digest %x, header %x", ErrSnapshotMismatch, got, h.TxHash)
	}
	if got := header.CalculateHash(h); got != h.Hash {
		return nil, fmt.Errorf("%w: header hash %x, recomputed %x", ErrSnapshotMismatch, h.Hash, got)
	}

	h.Closed = true
	l.header = h
	l.closed = true
	return l, nil
}

package ledgerstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/LeJamon/goswapd/internal/core/ledger"
)

// Snapshot wire format. State is count | (key32 | len4 | data)* with
// entries in ascending key order, so equal states encode identically.
// The tx set is count | (hash32 | len4 | tx | len4 | meta)* in
// application order.

func encodeState(state map[[32]byte][]byte) []byte {
	keys := make([][32]byte, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	buf := binary.BigEndian.AppendUint32(nil, uint32(len(keys)))
	for _, k := range keys {
		buf = append(buf, k[:]...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(state[k])))
		buf = append(buf, state[k]...)
	}
	return buf
}

func decodeState(data []byte) (map[[32]byte][]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short state snapshot", ErrCorruptSnapshot)
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]

	state := make(map[[32]byte][]byte, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 36 {
			return nil, fmt.Errorf("%w: truncated state entry %d", ErrCorruptSnapshot, i)
		}
		var key [32]byte
		copy(key[:], data[:32])
		size := binary.BigEndian.Uint32(data[32:36])
		data = data[36:]

		if uint32(len(data)) < size {
			return nil, fmt.Errorf("%w: truncated state entry %d", ErrCorruptSnapshot, i)
		}
		state[key] = append([]byte(nil), data[:size]...)
		data = data[size:]
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing state bytes", ErrCorruptSnapshot, len(data))
	}
	return state, nil
}

func encodeTxs(txs []ledger.TxRecord) []byte {
	buf := binary.BigEndian.AppendUint32(nil, uint32(len(txs)))
	for _, tr := range txs {
		buf = append(buf, tr.Hash[:]...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(tr.Tx)))
		buf = append(buf, tr.Tx...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(tr.Meta)))
		buf = append(buf, tr.Meta...)
	}
	return buf
}

func decodeTxs(data []byte) ([]ledger.TxRecord, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short tx snapshot", ErrCorruptSnapshot)
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]

	txs := make([]ledger.TxRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 36 {
			return nil, fmt.Errorf("%w: truncated tx record %d", ErrCorruptSnapshot, i)
		}
		var tr ledger.TxRecord
		copy(tr.Hash[:], data[:32])
		size := binary.BigEndian.Uint32(data[32:36])
		data = data[36:]

		if uint32(len(data)) < size {
			return nil, fmt.Errorf("%w: truncated tx record %d", ErrCorruptSnapshot, i)
		}
		tr.Tx = append([]byte(nil), data[:size]...)
		data = data[size:]

		if len(data) < 4 {
			return nil, fmt.Errorf("%w: truncated tx record %d", ErrCorruptSnapshot, i)
		}
		metaSize := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < metaSize {
			return nil, fmt.Errorf("%w: truncated tx record %d", ErrCorruptSnapshot, i)
		}
		tr.Meta = append([]byte(nil), data[:metaSize]...)
		data = data[metaSize:]

		txs = append(txs, tr)
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing tx bytes", ErrCorruptSnapshot, len(data))
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return txs, nil
}

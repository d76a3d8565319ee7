package crypto

import (
	"encoding/binary"
)

// HashPrefix provides domain separation for hashing. The prefix is
// inserted before the source material so that different kinds of
// objects can never produce the same hash.
type HashPrefix uint32

const (
	// HashPrefixTransactionID is the prefix for transaction ID calculation (TXN\0).
	HashPrefixTransactionID HashPrefix = 0x54584E00

	// HashPrefixTxSign is the prefix over a transaction's signing payload (STX\0).
	HashPrefixTxSign HashPrefix = 0x53545800

	// HashPrefixTxNode is the prefix over a ledger's applied
	// transaction set digest (SND\0).
	HashPrefixTxNode HashPrefix = 0x534E4400

	// HashPrefixLeafNode is the prefix over a ledger's state digest (MLN\0).
	HashPrefixLeafNode HashPrefix = 0x4D4C4E00

	// HashPrefixLedgerMaster is the prefix for ledger header hashing (LWR\0).
	HashPrefixLedgerMaster HashPrefix = 0x4C575200
)

// Bytes returns the hash prefix as a 4-byte big-endian slice.
func (hp HashPrefix) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(hp))
	return b
}

// PrependHashPrefix prepends the hash prefix to the data.
func PrependHashPrefix(prefix HashPrefix, data []byte) []byte {
	prefixBytes := prefix.Bytes()
	result := make([]byte, len(prefixBytes)+len(data))
	copy(result, prefixBytes)
	copy(result[len(prefixBytes):], data)
	return result
}

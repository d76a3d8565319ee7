// Package header defines the sealed per-ledger header. The header
// binds a ledger's sequence, native supply, state digest and close
// time into a single chained hash, so any two nodes holding the same
// header hash hold the same ledger.
package header

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/LeJamon/goswapd/internal/core/amount"
	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// NetworkEpoch is the Unix time of the network's time origin
// (2000-01-01T00:00:00Z). All on-ledger timestamps count seconds from
// this origin.
const NetworkEpoch int64 = 946684800

// DefaultCloseTimeResolution is the close time granularity in seconds.
// Manual close records it for compatibility but does not round.
const DefaultCloseTimeResolution uint8 = 10

// SerializedLen is the length of a serialized header. The serialized
// form is exactly the hashed region.
const SerializedLen = 4 + 8 + 32 + 32 + 32 + 4 + 4 + 1 + 1

// ErrShortHeader is returned when deserializing a truncated header.
var ErrShortHeader = errors.New("header: short buffer")

// Header holds the fields sealed at ledger close. CloseFlags is
// reserved and always zero under the manual close model.
type Header struct {
	Sequence            uint32
	TotalSupply         amount.Amount
	ParentHash          [32]byte
	TxHash              [32]byte
	AccountHash         [32]byte
	ParentCloseTime     uint32
	CloseTime           uint32
	CloseTimeResolution uint8
	CloseFlags          uint8

	// Hash is the header's own hash, set at close.
	Hash [32]byte

	// Closed means the transaction set is final.
	Closed bool
	// Validated is never unset once set.
	Validated bool
}

// Serialize returns the canonical hashed region of the header.
// Hash, Closed and Validated are runtime state and not part of it.
func (h Header) Serialize() []byte {
	buf := make([]byte, 0, SerializedLen)
	buf = binary.BigEndian.AppendUint32(buf, h.Sequence)
	buf = binary.BigEndian.AppendUint64(buf, h.TotalSupply.Units())
	buf = append(buf, h.ParentHash[:]...)
	buf = append(buf, h.TxHash[:]...)
	buf = append(buf, h.AccountHash[:]...)
	buf = binary.BigEndian.AppendUint32(buf, h.ParentCloseTime)
	buf = binary.BigEndian.AppendUint32(buf, h.CloseTime)
	buf = append(buf, h.CloseTimeResolution, h.CloseFlags)
	return buf
}

// Deserialize reconstructs a closed header from its serialized form
// and recomputes its hash.
func Deserialize(data []byte) (Header, error) {
	if len(data) < SerializedLen {
		return Header{}, ErrShortHeader
	}
	var h Header
	h.Sequence = binary.BigEndian.Uint32(data[0:4])
	h.TotalSupply = amount.New(binary.BigEndian.Uint64(data[4:12]))
	copy(h.ParentHash[:], data[12:44])
	copy(h.TxHash[:], data[44:76])
	copy(h.AccountHash[:], data[76:108])
	h.ParentCloseTime = binary.BigEndian.Uint32(data[108:112])
	h.CloseTime = binary.BigEndian.Uint32(data[112:116])
	h.CloseTimeResolution = data[116]
	h.CloseFlags = data[117]
	h.Closed = true
	h.Hash = CalculateHash(h)
	return h, nil
}

// CalculateHash computes the header hash over the ledgerMaster-prefixed
// serialized region.
func CalculateHash(h Header) [32]byte {
	return crypto.Sha512Half(crypto.HashPrefixLedgerMaster.Bytes(), h.Serialize())
}

// ToNetworkTime converts wall clock time to network epoch seconds.
// Times before the epoch map to zero.
func ToNetworkTime(t time.Time) uint32 {
	secs := t.Unix() - NetworkEpoch
	if secs < 0 {
		return 0
	}
	return uint32(secs)
}

// FromNetworkTime converts network epoch seconds to wall clock time.
func FromNetworkTime(s uint32) time.Time {
	return time.Unix(NetworkEpoch+int64(s), 0).UTC()
}

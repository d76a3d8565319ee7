// Package record defines the persisted ledger record kinds and their
// fixed-layout binary encoding. Every record serializes as a little-endian
// field sequence behind a common header; optional fields carry a one-byte
// present/absent tag so the worst-case encoded size of each kind is a
// compile-time constant.
package record

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Type identifies a record kind on the wire. Values are the ASCII short
// codes used as the leading tag of every serialized record.
type Type uint16

const (
	TypeAccountRoot Type = 0x0061 // 'a'
	TypeFeeSettings Type = 0x0065 // 'e'
	TypeHolding     Type = 0x0068 // 'h'
	TypeOffer       Type = 0x006f // 'o'
	TypeAsset       Type = 0x0074 // 't'
)

// String returns the name of the record type.
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeFeeSettings:
		return "FeeSettings"
	case TypeHolding:
		return "Holding"
	case TypeOffer:
		return "Offer"
	case TypeAsset:
		return "Asset"
	default:
		return fmt.Sprintf("Unknown(%#04x)", uint16(t))
	}
}

// Record is implemented by every ledger record kind.
type Record interface {
	Type() Type
	Validate() error
	Flatten() map[string]any
	Base() *BaseRecord
}

// BaseRecord carries the fields shared by all records: the flag word and
// the identity of the transaction that last touched the record.
type BaseRecord struct {
	Flags             uint32
	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32
}

// Base returns the shared portion of the record for threading updates.
func (b *BaseRecord) Base() *BaseRecord { return b }

func (b *BaseRecord) flattenInto(m map[string]any) {
	m["Flags"] = b.Flags
	if b.PreviousTxnID != [32]byte{} {
		m["PreviousTxnID"] = hexUpper(b.PreviousTxnID[:])
		m["PreviousTxnLgrSeq"] = b.PreviousTxnLgrSeq
	}
}

// headerLen is the serialized size of the type tag plus BaseRecord.
const headerLen = 2 + 4 + 32 + 4

var (
	// ErrShortBuffer reports a truncated record buffer.
	ErrShortBuffer = errors.New("record: buffer too short")
	// ErrUnknownType reports a type tag no record kind claims.
	ErrUnknownType = errors.New("record: unknown type tag")
)

// Parse decodes a record of any kind by its leading type tag.
func Parse(data []byte) (Record, error) {
	if len(data) < 2 {
		return nil, ErrShortBuffer
	}
	tag := Type(binary.LittleEndian.Uint16(data))
	switch tag {
	case TypeAccountRoot:
		return ParseAccountRoot(data)
	case TypeFeeSettings:
		return ParseFeeSettings(data)
	case TypeHolding:
		return ParseHolding(data)
	case TypeOffer:
		return ParseOffer(data)
	case TypeAsset:
		return ParseAsset(data)
	default:
		return nil, fmt.Errorf("%w: %#04x", ErrUnknownType, uint16(tag))
	}
}

// Serialize renders a record of any kind into its wire layout.
func Serialize(r Record) ([]byte, error) {
	switch v := r.(type) {
	case *AccountRoot:
		return SerializeAccountRoot(v), nil
	case *FeeSettings:
		return SerializeFeeSettings(v), nil
	case *Holding:
		return SerializeHolding(v), nil
	case *Offer:
		return SerializeOffer(v), nil
	case *Asset:
		return SerializeAsset(v), nil
	default:
		return nil, fmt.Errorf("record: cannot serialize %T", r)
	}
}

// IsBlank reports whether data is an allocated slot that has never held a
// record: every byte zero. A blank slot carries no type tag and may be
// claimed by a new record; any other content belongs to an existing one.
func IsBlank(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// writer appends little-endian fields to a growing buffer.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

// reader consumes little-endian fields with a sticky error, so a parse
// routine can read every field and check failure once at the end.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.fail(ErrShortBuffer)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) array20() (out [20]byte) {
	copy(out[:], r.take(20))
	return out
}

func (r *reader) array32() (out [32]byte) {
	copy(out[:], r.take(32))
	return out
}

// presence reads a one-byte optional-field tag.
func (r *reader) presence() bool {
	switch v := r.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail(fmt.Errorf("record: invalid presence tag %#02x", v))
		return false
	}
}

func writeHeader(w *writer, t Type, b *BaseRecord) {
	w.u16(uint16(t))
	w.u32(b.Flags)
	w.raw(b.PreviousTxnID[:])
	w.u32(b.PreviousTxnLgrSeq)
}

func readHeader(r *reader, want Type, b *BaseRecord) {
	got := Type(r.u16())
	if r.err == nil && got != want {
		r.fail(fmt.Errorf("record: type tag %s where %s expected", got, want))
	}
	b.Flags = r.u32()
	b.PreviousTxnID = r.array32()
	b.PreviousTxnLgrSeq = r.u32()
}

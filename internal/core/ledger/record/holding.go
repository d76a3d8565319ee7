package record

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// Holding is one account's balance of one registered token.
type Holding struct {
	BaseRecord

	Owner   [20]byte
	Asset   [32]byte
	Balance amount.Amount
}

const holdingLen = headerLen + 20 + 32 + 8

func (h *Holding) Type() Type {
	return TypeHolding
}

func (h *Holding) Validate() error {
	if h.Owner == [20]byte{} {
		return errors.New("owner is required")
	}
	if h.Asset == [32]byte{} {
		return errors.New("asset key is required")
	}
	return nil
}

func (h *Holding) Flatten() map[string]any {
	m := map[string]any{
		"LedgerEntryType": h.Type().String(),
		"Owner":           hexUpper(h.Owner[:]),
		"Asset":           hexUpper(h.Asset[:]),
		"Balance":         h.Balance.String(),
	}
	h.flattenInto(m)
	return m
}

// SerializeHolding renders the holding into its fixed wire layout.
func SerializeHolding(h *Holding) []byte {
	w := &writer{buf: make([]byte, 0, holdingLen)}
	writeHeader(w, TypeHolding, &h.BaseRecord)
	w.raw(h.Owner[:])
	w.raw(h.Asset[:])
	w.u64(h.Balance.Units())
	return w.buf
}

// ParseHolding decodes a Holding record.
func ParseHolding(data []byte) (*Holding, error) {
	if len(data) != holdingLen {
		return nil, fmt.Errorf("record: holding must be %d bytes, got %d", holdingLen, len(data))
	}
	r := &reader{buf: data}
	var h Holding
	readHeader(r, TypeHolding, &h.BaseRecord)
	h.Owner = r.array20()
	h.Asset = r.array32()
	h.Balance = amount.New(r.u64())
	if r.err != nil {
		return nil, r.err
	}
	return &h, nil
}

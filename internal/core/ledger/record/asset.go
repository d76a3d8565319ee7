package record

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// Asset is the registry record of one token: who issues it, its display
// code, its decimal precision and the total quantity issued so far.
type Asset struct {
	BaseRecord

	Issuer    [20]byte
	Code      [8]byte // ASCII, zero padded on the right
	Precision uint8
	Supply    amount.Amount
}

const assetLen = headerLen + 20 + 8 + 1 + 8

// MaxAssetPrecision bounds the decimal precision of a token so scaled
// quantities stay inside uint64.
const MaxAssetPrecision = 18

func (a *Asset) Type() Type {
	return TypeAsset
}

func (a *Asset) Validate() error {
	if a.Issuer == [20]byte{} {
		return errors.New("issuer is required")
	}
	code := a.CodeString()
	if code == "" {
		return errors.New("asset code is required")
	}
	for i := 0; i < len(code); i++ {
		if code[i] <= 0x20 || code[i] > 0x7e {
			return fmt.Errorf("asset code contains invalid byte %#02x", code[i])
		}
	}
	if a.Precision > MaxAssetPrecision {
		return fmt.Errorf("precision %d exceeds maximum %d", a.Precision, MaxAssetPrecision)
	}
	return nil
}

// CodeString returns the code with right padding stripped.
func (a *Asset) CodeString() string {
	end := len(a.Code)
	for end > 0 && a.Code[end-1] == 0 {
		end--
	}
	return string(a.Code[:end])
}

// CodeFromString packs a display code into its fixed field form.
func CodeFromString(s string) ([8]byte, error) {
	var code [8]byte
	if s == "" {
		return code, errors.New("asset code is required")
	}
	if len(s) > len(code) {
		return code, fmt.Errorf("asset code %q longer than %d bytes", s, len(code))
	}
	copy(code[:], s)
	return code, nil
}

func (a *Asset) Flatten() map[string]any {
	m := map[string]any{
		"LedgerEntryType": a.Type().String(),
		"Issuer":          hexUpper(a.Issuer[:]),
		"Code":            a.CodeString(),
		"Precision":       uint32(a.Precision),
		"Supply":          a.Supply.String(),
	}
	a.flattenInto(m)
	return m
}

// SerializeAsset renders the asset into its fixed wire layout.
func SerializeAsset(a *Asset) []byte {
	w := &writer{buf: make([]byte, 0, assetLen)}
	writeHeader(w, TypeAsset, &a.BaseRecord)
	w.raw(a.Issuer[:])
	w.raw(a.Code[:])
	w.u8(a.Precision)
	w.u64(a.Supply.Units())
	return w.buf
}

// ParseAsset decodes an Asset record.
func ParseAsset(data []byte) (*Asset, error) {
	if len(data) != assetLen {
		return nil, fmt.Errorf("record: asset must be %d bytes, got %d", assetLen, len(data))
	}
	r := &reader{buf: data}
	var a Asset
	readHeader(r, TypeAsset, &a.BaseRecord)
	a.Issuer = r.array20()
	copy(a.Code[:], r.take(8))
	a.Precision = r.u8()
	a.Supply = amount.New(r.u64())
	if r.err != nil {
		return nil, r.err
	}
	return &a, nil
}

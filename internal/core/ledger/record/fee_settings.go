package record

import (
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// FeeSettings is the singleton record holding the network cost schedule.
type FeeSettings struct {
	BaseRecord

	BaseFee          amount.Amount
	ReserveBase      amount.Amount
	ReserveIncrement amount.Amount
}

const feeSettingsLen = headerLen + 8 + 8 + 8

// NewFeeSettings builds the singleton from a fee schedule.
func NewFeeSettings(fees amount.Fees) *FeeSettings {
	return &FeeSettings{
		BaseFee:          fees.Base,
		ReserveBase:      fees.Reserve,
		ReserveIncrement: fees.Increment,
	}
}

// Fees returns the schedule the record carries, falling back to the
// default for any unset value.
func (f *FeeSettings) Fees() amount.Fees {
	fees := amount.DefaultFees()
	if !f.BaseFee.IsZero() {
		fees.Base = f.BaseFee
	}
	if !f.ReserveBase.IsZero() {
		fees.Reserve = f.ReserveBase
	}
	if !f.ReserveIncrement.IsZero() {
		fees.Increment = f.ReserveIncrement
	}
	return fees
}

func (f *FeeSettings) Type() Type {
	return TypeFeeSettings
}

func (f *FeeSettings) Validate() error {
	return nil
}

func (f *FeeSettings) Flatten() map[string]any {
	m := map[string]any{
		"LedgerEntryType":  f.Type().String(),
		"BaseFee":          f.BaseFee.String(),
		"ReserveBase":      f.ReserveBase.String(),
		"ReserveIncrement": f.ReserveIncrement.String(),
	}
	f.flattenInto(m)
	return m
}

// SerializeFeeSettings renders the schedule into its fixed wire layout.
func SerializeFeeSettings(f *FeeSettings) []byte {
	w := &writer{buf: make([]byte, 0, feeSettingsLen)}
	writeHeader(w, TypeFeeSettings, &f.BaseRecord)
	w.u64(f.BaseFee.Units())
	w.u64(f.ReserveBase.Units())
	w.u64(f.ReserveIncrement.Units())
	return w.buf
}

// ParseFeeSettings decodes the FeeSettings record.
func ParseFeeSettings(data []byte) (*FeeSettings, error) {
	if len(data) != feeSettingsLen {
		return nil, fmt.Errorf("record: fee settings must be %d bytes, got %d", feeSettingsLen, len(data))
	}
	r := &reader{buf: data}
	var f FeeSettings
	readHeader(r, TypeFeeSettings, &f.BaseRecord)
	f.BaseFee = amount.New(r.u64())
	f.ReserveBase = amount.New(r.u64())
	f.ReserveIncrement = amount.New(r.u64())
	if r.err != nil {
		return nil, r.err
	}
	return &f, nil
}

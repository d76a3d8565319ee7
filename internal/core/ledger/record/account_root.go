package record

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// AccountRoot is the ledger record of one funded account.
type AccountRoot struct {
	BaseRecord

	Account    [20]byte
	Sequence   uint32
	Balance    amount.Amount
	OwnerCount uint32
}

// accountRootLen is the fixed encoded size of an AccountRoot.
const accountRootLen = headerLen + 20 + 4 + 8 + 4

func (a *AccountRoot) Type() Type {
	return TypeAccountRoot
}

func (a *AccountRoot) Validate() error {
	if a.Account == [20]byte{} {
		return errors.New("account ID is required")
	}
	return nil
}

func (a *AccountRoot) Flatten() map[string]any {
	m := map[string]any{
		"LedgerEntryType": a.Type().String(),
		"Account":         hexUpper(a.Account[:]),
		"Sequence":        a.Sequence,
		"Balance":         a.Balance.String(),
		"OwnerCount":      a.OwnerCount,
	}
	a.flattenInto(m)
	return m
}

// SerializeAccountRoot renders the account into its fixed wire layout.
func SerializeAccountRoot(a *AccountRoot) []byte {
	w := &writer{buf: make([]byte, 0, accountRootLen)}
	writeHeader(w, TypeAccountRoot, &a.BaseRecord)
	w.raw(a.Account[:])
	w.u32(a.Sequence)
	w.u64(a.Balance.Units())
	w.u32(a.OwnerCount)
	return w.buf
}

// ParseAccountRoot decodes an AccountRoot record.
func ParseAccountRoot(data []byte) (*AccountRoot, error) {
	if len(data) != accountRootLen {
		return nil, fmt.Errorf("record: account root must be %d bytes, got %d", accountRootLen, len(data))
	}
	r := &reader{buf: data}
	var a AccountRoot
	readHeader(r, TypeAccountRoot, &a.BaseRecord)
	a.Account = r.array20()
	a.Sequence = r.u32()
	a.Balance = amount.New(r.u64())
	a.OwnerCount = r.u32()
	if r.err != nil {
		return nil, r.err
	}
	return &a, nil
}

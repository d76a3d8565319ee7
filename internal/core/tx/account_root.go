package tx

import (
	"errors"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/crypto"
)

// ErrAccountNotFound is returned when a referenced account has no
// ledger record.
var ErrAccountNotFound = errors.New("account not found")

// DecodeAccountID converts an address string to a 20-byte account ID.
func DecodeAccountID(address string) ([20]byte, error) {
	_, accountID, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		return [20]byte{}, err
	}
	return crypto.AccountIDFromBytes(accountID), nil
}

// EncodeAccountID converts a 20-byte account ID to its address string.
func EncodeAccountID(id [20]byte) (string, error) {
	return addresscodec.EncodeAccountIDToClassicAddress(id[:])
}

// loadAccount reads an account root through the view. Returns
// ErrAccountNotFound if the account has no record.
func loadAccount(view LedgerView, id [20]byte) (*record.AccountRoot, error) {
	k := keylet.Account(id)
	exists, err := view.Exists(k)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	data, err := view.Read(k)
	if err != nil {
		return nil, err
	}
	return record.ParseAccountRoot(data)
}

// saveAccount writes an existing account root back through the view.
func saveAccount(view LedgerView, a *record.AccountRoot) error {
	return view.Update(keylet.Account(a.Account), record.SerializeAccountRoot(a))
}

// createAccount inserts a new account root through the view.
func createAccount(view LedgerView, a *record.AccountRoot) error {
	return view.Insert(keylet.Account(a.Account), record.SerializeAccountRoot(a))
}

package tx

import (
	"errors"
	"fmt"
)

// Payment moves value from the sender to a destination: native units,
// or a registered token named by its asset key. A native payment to an
// address with no account yet funds a new account.
type Payment struct {
	BaseTx

	// Destination is the account receiving the payment.
	Destination string `json:"Destination"`

	// Amount is an unsigned decimal unit count.
	Amount string `json:"Amount"`

	// Asset is the 64-hex asset key of the token to deliver. Empty
	// means native units.
	Asset string `json:"Asset,omitempty"`

	// Precision optionally pins the expected precision of the token; a
	// registry entry scaled differently fails the payment.
	Precision *uint8 `json:"Precision,omitempty"`
}

// NewPayment creates a native payment.
func NewPayment(account, destination, amount string) *Payment {
	return &Payment{
		BaseTx:      *NewBaseTx(TypePayment, account),
		Destination: destination,
		Amount:      amount,
	}
}

// NewTokenPayment creates a token payment.
func NewTokenPayment(account, destination, asset, amount string) *Payment {
	return &Payment{
		BaseTx:      *NewBaseTx(TypePayment, account),
		Destination: destination,
		Amount:      amount,
		Asset:       asset,
	}
}

// TxType returns the transaction type.
func (p *Payment) TxType() Type {
	return TypePayment
}

// Validate validates the payment.
func (p *Payment) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.Destination == "" {
		return errors.New("temDST_NEEDED: Destination is required")
	}
	if _, err := DecodeAccountID(p.Destination); err != nil {
		return fmt.Errorf("temMALFORMED: Destination: %v", err)
	}
	if p.Destination == p.Account {
		return errors.New("temDST_IS_SRC: cannot pay the sending account")
	}
	if _, err := parseAmountValue(p.Amount); err != nil {
		return fmt.Errorf("temBAD_AMOUNT: Amount: %v", err)
	}
	if p.Asset != "" {
		ref, err := parseAssetSpec(p.Asset)
		if err != nil {
			return fmt.Errorf("temMALFORMED: Asset: %v", err)
		}
		if ref.IsNative() {
			return errors.New("temMALFORMED: a native payment leaves Asset empty")
		}
	} else if p.Precision != nil {
		return errors.New("temMALFORMED: Precision is only valid on a token payment")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (p *Payment) Flatten() (map[string]any, error) {
	m := p.Common.ToMap()
	m["Destination"] = p.Destination
	m["Amount"] = p.Amount
	if p.Asset != "" {
		m["Asset"] = p.Asset
	}
	if p.Precision != nil {
		m["Precision"] = uint32(*p.Precision)
	}
	return m, nil
}

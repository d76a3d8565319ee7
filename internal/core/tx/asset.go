package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// AssetCreate registers a token under the sender as issuer. The asset
// key is derived from the issuer and code, so one issuer registers any
// code at most once.
type AssetCreate struct {
	BaseTx

	// Code is the token code, up to 8 ASCII characters.
	Code string `json:"Code"`

	// Precision is the number of decimal places one display unit
	// subdivides into.
	Precision uint8 `json:"Precision"`
}

// AssetIssue mints new supply of a registered token into a holding of
// the destination. Only the issuer may mint.
type AssetIssue struct {
	BaseTx

	// Asset is the 64-hex asset key.
	Asset string `json:"Asset"`

	// Destination receives the minted supply; it may be the issuer.
	Destination string `json:"Destination"`

	// Amount is an unsigned decimal unit count.
	Amount string `json:"Amount"`
}

// NewAssetCreate creates an AssetCreate.
func NewAssetCreate(account, code string, precision uint8) *AssetCreate {
	return &AssetCreate{
		BaseTx:    *NewBaseTx(TypeAssetCreate, account),
		Code:      code,
		Precision: precision,
	}
}

// NewAssetIssue creates an AssetIssue.
func NewAssetIssue(account, asset, destination, amount string) *AssetIssue {
	return &AssetIssue{
		BaseTx:      *NewBaseTx(TypeAssetIssue, account),
		Asset:       asset,
		Destination: destination,
		Amount:      amount,
	}
}

func (a *AssetCreate) TxType() Type { return TypeAssetCreate }
func (a *AssetIssue) TxType() Type  { return TypeAssetIssue }

// Validate validates the registration.
func (a *AssetCreate) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := record.CodeFromString(a.Code); err != nil {
		return fmt.Errorf("temMALFORMED: Code: %v", err)
	}
	if a.Precision > record.MaxAssetPrecision {
		return fmt.Errorf("temMALFORMED: Precision %d exceeds maximum %d", a.Precision, record.MaxAssetPrecision)
	}
	return nil
}

// Validate validates the mint.
func (a *AssetIssue) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := parseOfferID(a.Asset); err != nil {
		return fmt.Errorf("temMALFORMED: Asset: %v", err)
	}
	if a.Destination == "" {
		return errors.New("temDST_NEEDED: Destination is required")
	}
	if _, err := DecodeAccountID(a.Destination); err != nil {
		return fmt.Errorf("temMALFORMED: Destination: %v", err)
	}
	if _, err := parseAmountValue(a.Amount); err != nil {
		return fmt.Errorf("temBAD_AMOUNT: Amount: %v", err)
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (a *AssetCreate) Flatten() (map[string]any, error) {
	m := a.Common.ToMap()
	m["Code"] = a.Code
	m["Precision"] = uint32(a.Precision)
	return m, nil
}

// Flatten returns a flat map of all transaction fields.
func (a *AssetIssue) Flatten() (map[string]any, error) {
	m := a.Common.ToMap()
	m["Asset"] = a.Asset
	m["Destination"] = a.Destination
	m["Amount"] = a.Amount
	return m, nil
}

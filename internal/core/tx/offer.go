package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// OfferCreate opens a new offer at its derived entry key. The sender is
// the maker. A native offered side is escrowed into the entry up front;
// a token offered side is only verified, the tokens stay in the maker's
// holding until acceptance.
type OfferCreate struct {
	BaseTx

	// OfferID is the derived entry key, 64 hex characters. It must
	// re-derive from (Account, OfferAsset, ReceiveAsset).
	OfferID string `json:"OfferID"`

	// Salt is the canonical derivation salt for OfferID.
	Salt uint8 `json:"Salt"`

	// Kind is one of Direct, PublicBuy, PublicSell.
	Kind string `json:"Kind"`

	// OfferAsset and ReceiveAsset name the two legs: "native" or a
	// 64-hex asset key.
	OfferAsset   string `json:"OfferAsset"`
	ReceiveAsset string `json:"ReceiveAsset"`

	// OfferAmount and ReceiveAmount are unsigned decimal unit counts.
	OfferAmount   string `json:"OfferAmount"`
	ReceiveAmount string `json:"ReceiveAmount"`

	// Expiration is unix seconds; omitted means the offer never expires.
	Expiration *int64 `json:"Expiration,omitempty"`

	// Destination is the designated taker. Required for Direct offers,
	// forbidden otherwise.
	Destination string `json:"Destination,omitempty"`
}

// OfferAccept settles an active offer. The sender is the acceptor and
// pays the receive leg; the offered leg comes out of escrow or out of
// the maker's holding under the entry's derived authority.
type OfferAccept struct {
	BaseTx

	// OfferID is the entry key of the offer being accepted.
	OfferID string `json:"OfferID"`

	// Maker is the address the acceptor believes made the offer. It
	// must match the record, so stale or swapped terms fail.
	Maker string `json:"Maker"`
}

// OfferCounter retires an active offer and opens a replacement with new
// terms under the counter-maker's own derived key. Only the original
// maker or the designated taker may counter.
type OfferCounter struct {
	BaseTx

	// OfferID is the entry key of the offer being countered.
	OfferID string `json:"OfferID"`

	// NewOfferID is the derived entry key of the replacement offer; it
	// must re-derive from (Account, OfferAsset, ReceiveAsset).
	NewOfferID string `json:"NewOfferID"`

	// Salt is the canonical derivation salt for NewOfferID.
	Salt uint8 `json:"Salt"`

	OfferAsset    string `json:"OfferAsset"`
	ReceiveAsset  string `json:"ReceiveAsset"`
	OfferAmount   string `json:"OfferAmount"`
	ReceiveAmount string `json:"ReceiveAmount"`

	// Expiration applies to the replacement offer only.
	Expiration *int64 `json:"Expiration,omitempty"`
}

// OfferCancel withdraws the sender's own active offer and refunds any
// escrowed native units.
type OfferCancel struct {
	BaseTx

	OfferID string `json:"OfferID"`
}

// NewOfferCreate creates an OfferCreate with its trade terms. OfferID
// and Salt are left for DeriveID or the caller.
func NewOfferCreate(account, kind, offerAsset, offerAmount, receiveAsset, receiveAmount string) *OfferCreate {
	return &OfferCreate{
		BaseTx:        *NewBaseTx(TypeOfferCreate, account),
		Kind:          kind,
		OfferAsset:    offerAsset,
		OfferAmount:   offerAmount,
		ReceiveAsset:  receiveAsset,
		ReceiveAmount: receiveAmount,
	}
}

// NewOfferAccept creates an OfferAccept.
func NewOfferAccept(account, offerID, maker string) *OfferAccept {
	return &OfferAccept{
		BaseTx:  *NewBaseTx(TypeOfferAccept, account),
		OfferID: offerID,
		Maker:   maker,
	}
}

// NewOfferCounter creates an OfferCounter with the replacement terms.
// NewOfferID and Salt are left for DeriveNewID or the caller.
func NewOfferCounter(account, offerID, offerAsset, offerAmount, receiveAsset, receiveAmount string) *OfferCounter {
	return &OfferCounter{
		BaseTx:        *NewBaseTx(TypeOfferCounter, account),
		OfferID:       offerID,
		OfferAsset:    offerAsset,
		OfferAmount:   offerAmount,
		ReceiveAsset:  receiveAsset,
		ReceiveAmount: receiveAmount,
	}
}

// NewOfferCancel creates an OfferCancel.
func NewOfferCancel(account, offerID string) *OfferCancel {
	return &OfferCancel{
		BaseTx:  *NewBaseTx(TypeOfferCancel, account),
		OfferID: offerID,
	}
}

// DeriveOfferAddress computes the entry key and canonical salt for a
// maker and asset pair, in the wire forms transactions carry.
func DeriveOfferAddress(maker, offerAsset, receiveAsset string) (string, uint8, error) {
	makerID, err := DecodeAccountID(maker)
	if err != nil {
		return "", 0, err
	}
	oa, err := parseAssetSpec(offerAsset)
	if err != nil {
		return "", 0, err
	}
	ra, err := parseAssetSpec(receiveAsset)
	if err != nil {
		return "", 0, err
	}
	k, salt, err := keylet.FindOffer(makerID, oa, ra)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%X", k.Key), salt, nil
}

// DeriveID fills OfferID and Salt from the maker and asset pair.
func (o *OfferCreate) DeriveID() error {
	id, salt, err := DeriveOfferAddress(o.Account, o.OfferAsset, o.ReceiveAsset)
	if err != nil {
		return err
	}
	o.OfferID = id
	o.Salt = salt
	return nil
}

// DeriveNewID fills NewOfferID and Salt from the counter-maker and the
// replacement asset pair.
func (o *OfferCounter) DeriveNewID() error {
	id, salt, err := DeriveOfferAddress(o.Account, o.OfferAsset, o.ReceiveAsset)
	if err != nil {
		return err
	}
	o.NewOfferID = id
	o.Salt = salt
	return nil
}

func (o *OfferCreate) TxType() Type  { return TypeOfferCreate }
func (o *OfferAccept) TxType() Type  { return TypeOfferAccept }
func (o *OfferCounter) TxType() Type { return TypeOfferCounter }
func (o *OfferCancel) TxType() Type  { return TypeOfferCancel }

// Validate validates the offer creation.
func (o *OfferCreate) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := parseOfferID(o.OfferID); err != nil {
		return fmt.Errorf("temMALFORMED: OfferID: %v", err)
	}
	kind, err := parseOfferKind(o.Kind)
	if err != nil {
		return fmt.Errorf("temMALFORMED: %v", err)
	}
	offerAsset, receiveAsset, err := parseAssetPair(o.OfferAsset, o.ReceiveAsset)
	if err != nil {
		return err
	}
	if err := validateAmountPair(o.OfferAmount, o.ReceiveAmount); err != nil {
		return err
	}

	switch kind {
	case record.KindPublicBuy:
		if !offerAsset.IsNative() {
			return errors.New("temBAD_OFFER: public buy must offer native currency")
		}
	case record.KindPublicSell:
		if offerAsset.IsNative() || !receiveAsset.IsNative() {
			return errors.New("temBAD_OFFER: public sell must offer a token for native currency")
		}
	}

	if kind == record.KindDirect {
		if o.Destination == "" {
			return errors.New("temDST_NEEDED: direct offer requires a Destination")
		}
		if _, err := DecodeAccountID(o.Destination); err != nil {
			return fmt.Errorf("temMALFORMED: Destination: %v", err)
		}
		if o.Destination == o.Account {
			return errors.New("temDST_IS_SRC: Destination cannot be the maker")
		}
	} else if o.Destination != "" {
		return errors.New("temMALFORMED: Destination is only valid on a direct offer")
	}

	return validateExpiration(o.Expiration)
}

// Validate validates the acceptance.
func (o *OfferAccept) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := parseOfferID(o.OfferID); err != nil {
		return fmt.Errorf("temMALFORMED: OfferID: %v", err)
	}
	if o.Maker == "" {
		return errors.New("temMALFORMED: Maker is required")
	}
	if _, err := DecodeAccountID(o.Maker); err != nil {
		return fmt.Errorf("temMALFORMED: Maker: %v", err)
	}
	if o.Maker == o.Account {
		return errors.New("temDST_IS_SRC: cannot accept an own offer")
	}
	return nil
}

// Validate validates the counter.
func (o *OfferCounter) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := parseOfferID(o.OfferID); err != nil {
		return fmt.Errorf("temMALFORMED: OfferID: %v", err)
	}
	if _, err := parseOfferID(o.NewOfferID); err != nil {
		return fmt.Errorf("temMALFORMED: NewOfferID: %v", err)
	}
	if o.NewOfferID == o.OfferID {
		return errors.New("temREDUNDANT: counter cannot reuse the countered entry")
	}
	if _, _, err := parseAssetPair(o.OfferAsset, o.ReceiveAsset); err != nil {
		return err
	}
	if err := validateAmountPair(o.OfferAmount, o.ReceiveAmount); err != nil {
		return err
	}
	return validateExpiration(o.Expiration)
}

// Validate validates the cancellation.
func (o *OfferCancel) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := parseOfferID(o.OfferID); err != nil {
		return fmt.Errorf("temMALFORMED: OfferID: %v", err)
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (o *OfferCreate) Flatten() (map[string]any, error) {
	m := o.Common.ToMap()
	m["OfferID"] = o.OfferID
	m["Salt"] = uint32(o.Salt)
	m["Kind"] = o.Kind
	m["OfferAsset"] = o.OfferAsset
	m["OfferAmount"] = o.OfferAmount
	m["ReceiveAsset"] = o.ReceiveAsset
	m["ReceiveAmount"] = o.ReceiveAmount
	if o.Expiration != nil {
		m["Expiration"] = *o.Expiration
	}
	if o.Destination != "" {
		m["Destination"] = o.Destination
	}
	return m, nil
}

// Flatten returns a flat map of all transaction fields.
func (o *OfferAccept) Flatten() (map[string]any, error) {
	m := o.Common.ToMap()
	m["OfferID"] = o.OfferID
	m["Maker"] = o.Maker
	return m, nil
}

// Flatten returns a flat map of all transaction fields.
func (o *OfferCounter) Flatten() (map[string]any, error) {
	m := o.Common.ToMap()
	m["OfferID"] = o.OfferID
	m["NewOfferID"] = o.NewOfferID
	m["Salt"] = uint32(o.Salt)
	m["OfferAsset"] = o.OfferAsset
	m["OfferAmount"] = o.OfferAmount
	m["ReceiveAsset"] = o.ReceiveAsset
	m["ReceiveAmount"] = o.ReceiveAmount
	if o.Expiration != nil {
		m["Expiration"] = *o.Expiration
	}
	return m, nil
}

// Flatten returns a flat map of all transaction fields.
func (o *OfferCancel) Flatten() (map[string]any, error) {
	m := o.Common.ToMap()
	m["OfferID"] = o.OfferID
	return m, nil
}

// parseOfferID decodes a 64-hex entry key.
func parseOfferID(s string) ([32]byte, error) {
	var key [32]byte
	if len(s) != 64 {
		return key, fmt.Errorf("entry key must be 64 hex characters, got %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("entry key is not hex: %v", err)
	}
	copy(key[:], raw)
	if key == [32]byte{} {
		return key, errors.New("entry key cannot be zero")
	}
	return key, nil
}

// parseAssetSpec decodes a trade leg currency: the literal "native" or
// a 64-hex asset key.
func parseAssetSpec(s string) (record.AssetRef, error) {
	if s == "native" {
		return record.NativeAsset(), nil
	}
	if len(s) != 64 {
		return record.AssetRef{}, fmt.Errorf("asset must be %q or a 64 hex key, got %q", "native", s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return record.AssetRef{}, fmt.Errorf("asset key is not hex: %v", err)
	}
	var id [32]byte
	copy(id[:], raw)
	ref := record.TokenAsset(id)
	if err := ref.Validate(); err != nil {
		return record.AssetRef{}, err
	}
	return ref, nil
}

// parseAssetPair decodes both legs and rejects a same-asset pair, tem
// prefixed for Validate call sites.
func parseAssetPair(offerAsset, receiveAsset string) (record.AssetRef, record.AssetRef, error) {
	oa, err := parseAssetSpec(offerAsset)
	if err != nil {
		return record.AssetRef{}, record.AssetRef{}, fmt.Errorf("temMALFORMED: OfferAsset: %v", err)
	}
	ra, err := parseAssetSpec(receiveAsset)
	if err != nil {
		return record.AssetRef{}, record.AssetRef{}, fmt.Errorf("temMALFORMED: ReceiveAsset: %v", err)
	}
	if oa.Equal(ra) {
		return record.AssetRef{}, record.AssetRef{}, errors.New("temREDUNDANT: offered and requested asset are the same")
	}
	return oa, ra, nil
}

// parseAmountValue decodes a positive decimal unit count.
func parseAmountValue(s string) (amount.Amount, error) {
	units, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a decimal unit count", s)
	}
	a := amount.New(units)
	if a.IsZero() {
		return 0, errors.New("amount must be positive")
	}
	return a, nil
}

func validateAmountPair(offerAmount, receiveAmount string) error {
	if _, err := parseAmountValue(offerAmount); err != nil {
		return fmt.Errorf("temBAD_AMOUNT: OfferAmount: %v", err)
	}
	if _, err := parseAmountValue(receiveAmount); err != nil {
		return fmt.Errorf("temBAD_AMOUNT: ReceiveAmount: %v", err)
	}
	return nil
}

func validateExpiration(expiration *int64) error {
	if expiration != nil && *expiration <= 0 {
		return errors.New("temBAD_EXPIRATION: Expiration must be positive unix seconds")
	}
	return nil
}

// parseOfferKind decodes the wire form of an offer kind.
func parseOfferKind(s string) (record.Kind, error) {
	switch s {
	case record.KindDirect.String():
		return record.KindDirect, nil
	case record.KindPublicBuy.String():
		return record.KindPublicBuy, nil
	case record.KindPublicSell.String():
		return record.KindPublicSell, nil
	default:
		return 0, fmt.Errorf("unknown offer kind %q", s)
	}
}

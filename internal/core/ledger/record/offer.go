package record

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// Kind classifies who may accept an offer.
type Kind uint8

const (
	// KindDirect offers name one counterparty as the sole permitted acceptor.
	KindDirect Kind = iota
	// KindPublicBuy offers escrow native currency in exchange for a token.
	KindPublicBuy
	// KindPublicSell offers a token in exchange for native currency.
	KindPublicSell
)

// String returns the name of the offer kind.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "Direct"
	case KindPublicBuy:
		return "PublicBuy"
	case KindPublicSell:
		return "PublicSell"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Status is the lifecycle state of an offer. Transitions only move
// forward: an offer leaves Active exactly once and never returns.
type Status uint8

const (
	StatusActive Status = iota
	StatusAccepted
	StatusDeclined
	StatusCountered
	StatusExpired
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusAccepted:
		return "Accepted"
	case StatusDeclined:
		return "Declined"
	case StatusCountered:
		return "Countered"
	case StatusExpired:
		return "Expired"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Offer is the persisted state of one proposed exchange. The entry is its
// own escrow sub-account: Balance is the native quantity the entry holds,
// of which EscrowedNative is the portion pledged to the trade and the
// remainder is the entry baseline locked at creation.
type Offer struct {
	BaseRecord

	Kind   Kind
	Status Status
	Maker  [20]byte
	// Taker names the only account allowed to accept; set exactly when the
	// offer is Direct.
	Taker *[20]byte

	OfferAsset    AssetRef
	OfferAmount   amount.Amount
	ReceiveAsset  AssetRef
	ReceiveAmount amount.Amount

	Balance        amount.Amount
	EscrowedNative amount.Amount

	// Expiration is unix seconds; nil means the offer never expires.
	Expiration *int64

	// IsCounter and OriginOffer record counter-offer provenance: set
	// together when this record was created by countering OriginOffer.
	IsCounter   bool
	OriginOffer *[32]byte

	// Salt is the derivation salt of this record's own address, kept so
	// every later operation can re-verify address consistency.
	Salt uint8
}

// MaxOfferLen is the allocation size of an offer slot: the header plus
// the worst case of every body field including presence tags.
const MaxOfferLen = headerLen +
	1 + // Kind
	1 + // Status
	20 + // Maker
	1 + 20 + // Taker
	assetRefLen + // OfferAsset
	8 + // OfferAmount
	assetRefLen + // ReceiveAsset
	8 + // ReceiveAmount
	8 + // Balance
	8 + // EscrowedNative
	1 + 8 + // Expiration
	1 + // IsCounter
	1 + 32 + // OriginOffer
	1 // Salt

func (o *Offer) Type() Type {
	return TypeOffer
}

// Validate checks the structural invariants every persisted offer holds.
// Kind/asset coherence rules that apply only at creation time are not
// checked here; countered records inherit their kind as provenance and may
// pair it with either asset form.
func (o *Offer) Validate() error {
	if o.Kind > KindPublicSell {
		return fmt.Errorf("invalid offer kind %d", o.Kind)
	}
	if o.Status > StatusExpired {
		return fmt.Errorf("invalid offer status %d", o.Status)
	}
	if o.Maker == [20]byte{} {
		return errors.New("maker is required")
	}
	if err := o.OfferAsset.Validate(); err != nil {
		return fmt.Errorf("offer asset: %w", err)
	}
	if err := o.ReceiveAsset.Validate(); err != nil {
		return fmt.Errorf("receive asset: %w", err)
	}
	if o.OfferAsset.Equal(o.ReceiveAsset) {
		return errors.New("offered and requested asset must differ")
	}
	if o.OfferAmount.IsZero() || o.ReceiveAmount.IsZero() {
		return errors.New("offer and receive amounts must be positive")
	}
	if o.Kind == KindDirect && o.Taker == nil {
		return errors.New("direct offer requires a taker")
	}
	if o.Kind != KindDirect && o.Taker != nil {
		return errors.New("public offer cannot name a taker")
	}
	if o.EscrowedNative > o.Balance {
		return errors.New("escrowed amount exceeds entry balance")
	}
	if !o.EscrowedNative.IsZero() {
		if !o.OfferAsset.IsNative() {
			return errors.New("escrow held against a non-native offered side")
		}
		if o.Status != StatusActive {
			return errors.New("escrow held by a non-active offer")
		}
	}
	if o.IsCounter != (o.OriginOffer != nil) {
		return errors.New("counter provenance fields must be set together")
	}
	return nil
}

// Flatten renders the offer as field name to value for metadata.
func (o *Offer) Flatten() map[string]any {
	m := map[string]any{
		"LedgerEntryType": o.Type().String(),
		"Kind":            o.Kind.String(),
		"Status":          o.Status.String(),
		"Maker":           hexUpper(o.Maker[:]),
		"OfferAsset":      o.OfferAsset.String(),
		"OfferAmount":     o.OfferAmount.String(),
		"ReceiveAsset":    o.ReceiveAsset.String(),
		"ReceiveAmount":   o.ReceiveAmount.String(),
		"Balance":         o.Balance.String(),
		"EscrowedNative":  o.EscrowedNative.String(),
		"IsCounter":       o.IsCounter,
		"Salt":            uint32(o.Salt),
	}
	o.flattenInto(m)
	if o.Taker != nil {
		m["Taker"] = hexUpper(o.Taker[:])
	}
	if o.Expiration != nil {
		m["Expiration"] = *o.Expiration
	}
	if o.OriginOffer != nil {
		m["OriginOffer"] = hexUpper(o.OriginOffer[:])
	}
	return m
}

// SerializeOffer renders the offer into a zero-padded MaxOfferLen slot.
func SerializeOffer(o *Offer) []byte {
	w := &writer{buf: make([]byte, 0, MaxOfferLen)}
	writeHeader(w, TypeOffer, &o.BaseRecord)
	w.u8(uint8(o.Kind))
	w.u8(uint8(o.Status))
	w.raw(o.Maker[:])
	if o.Taker != nil {
		w.u8(1)
		w.raw(o.Taker[:])
	} else {
		w.u8(0)
	}
	w.assetRef(o.OfferAsset)
	w.u64(o.OfferAmount.Units())
	w.assetRef(o.ReceiveAsset)
	w.u64(o.ReceiveAmount.Units())
	w.u64(o.Balance.Units())
	w.u64(o.EscrowedNative.Units())
	if o.Expiration != nil {
		w.u8(1)
		w.u64(uint64(*o.Expiration))
	} else {
		w.u8(0)
	}
	if o.IsCounter {
		w.u8(1)
	} else {
		w.u8(0)
	}
	if o.OriginOffer != nil {
		w.u8(1)
		w.raw(o.OriginOffer[:])
	} else {
		w.u8(0)
	}
	w.u8(o.Salt)
	for len(w.buf) < MaxOfferLen {
		w.buf = append(w.buf, 0)
	}
	return w.buf
}

// ParseOffer decodes an offer slot. The buffer must be exactly MaxOfferLen;
// bytes past the encoded fields are padding.
func ParseOffer(data []byte) (*Offer, error) {
	if len(data) != MaxOfferLen {
		return nil, fmt.Errorf("record: offer slot must be %d bytes, got %d", MaxOfferLen, len(data))
	}
	r := &reader{buf: data}
	var o Offer
	readHeader(r, TypeOffer, &o.BaseRecord)
	o.Kind = Kind(r.u8())
	o.Status = Status(r.u8())
	o.Maker = r.array20()
	if r.presence() {
		taker := r.array20()
		o.Taker = &taker
	}
	o.OfferAsset = r.assetRef()
	o.OfferAmount = amount.New(r.u64())
	o.ReceiveAsset = r.assetRef()
	o.ReceiveAmount = amount.New(r.u64())
	o.Balance = amount.New(r.u64())
	o.EscrowedNative = amount.New(r.u64())
	if r.presence() {
		exp := int64(r.u64())
		o.Expiration = &exp
	}
	o.IsCounter = r.presence()
	if r.presence() {
		origin := r.array32()
		o.OriginOffer = &origin
	}
	o.Salt = r.u8()
	if r.err != nil {
		return nil, r.err
	}
	return &o, nil
}

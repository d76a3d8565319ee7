package offer

import (
	"strconv"
	"time"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// OfferCreateBuilder provides a fluent interface for building
// OfferCreate transactions in scenario tests. The entry key is derived
// from the maker and asset pair; OfferID and Salt can be overridden to
// exercise the address integrity checks.
type OfferCreateBuilder struct {
	account       *jtx.Account
	kind          string
	offerAsset    string
	offerAmount   amount.Amount
	receiveAsset  string
	receiveAmount amount.Amount
	destination   string
	expiration    *int64
	offerID       string
	salt          *uint8
	fee           uint64
	sequence      *uint32
}

// OfferCreate creates a new OfferCreateBuilder. Assets are "native" or
// a 64-hex asset key.
func OfferCreate(account *jtx.Account, kind, offerAsset string, offerAmount amount.Amount, receiveAsset string, receiveAmount amount.Amount) *OfferCreateBuilder {
	return &OfferCreateBuilder{
		account:       account,
		kind:          kind,
		offerAsset:    offerAsset,
		offerAmount:   offerAmount,
		receiveAsset:  receiveAsset,
		receiveAmount: receiveAmount,
		fee:           10,
	}
}

// Destination names the sole permitted acceptor of a direct offer.
func (b *OfferCreateBuilder) Destination(taker *jtx.Account) *OfferCreateBuilder {
	b.destination = taker.Address
	return b
}

// DestinationAddress sets the destination as a raw address.
func (b *OfferCreateBuilder) DestinationAddress(addr string) *OfferCreateBuilder {
	b.destination = addr
	return b
}

// Expiration sets the unix second the offer lapses after.
func (b *OfferCreateBuilder) Expiration(unix int64) *OfferCreateBuilder {
	b.expiration = &unix
	return b
}

// ExpiresAt sets the expiration from a wall-clock time.
func (b *OfferCreateBuilder) ExpiresAt(t time.Time) *OfferCreateBuilder {
	return b.Expiration(t.Unix())
}

// OfferID overrides the derived entry key.
func (b *OfferCreateBuilder) OfferID(id string) *OfferCreateBuilder {
	b.offerID = id
	return b
}

// Salt overrides the derived salt.
func (b *OfferCreateBuilder) Salt(s uint8) *OfferCreateBuilder {
	b.salt = &s
	return b
}

// Fee sets the transaction fee in base units.
func (b *OfferCreateBuilder) Fee(f uint64) *OfferCreateBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *OfferCreateBuilder) Sequence(seq uint32) *OfferCreateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the OfferCreate transaction. The entry key is
// derived first, then any overrides replace it.
func (b *OfferCreateBuilder) Build() tx.Transaction {
	o := tx.NewOfferCreate(b.account.Address, b.kind,
		b.offerAsset, b.offerAmount.String(),
		b.receiveAsset, b.receiveAmount.String())
	o.Destination = b.destination
	o.Expiration = b.expiration
	o.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		o.Sequence = b.sequence
	}
	if err := o.DeriveID(); err != nil {
		panic("derive offer address: " + err.Error())
	}
	if b.offerID != "" {
		o.OfferID = b.offerID
	}
	if b.salt != nil {
		o.Salt = *b.salt
	}
	return o
}

// BuildOfferCreate returns the concrete *tx.OfferCreate type.
func (b *OfferCreateBuilder) BuildOfferCreate() *tx.OfferCreate {
	return b.Build().(*tx.OfferCreate)
}

// OfferAcceptBuilder provides a fluent interface for building
// OfferAccept transactions.
type OfferAcceptBuilder struct {
	account  *jtx.Account
	offerID  string
	maker    string
	fee      uint64
	sequence *uint32
}

// OfferAccept creates a new OfferAcceptBuilder settling the named
// offer. The maker is the address the acceptor believes made the offer.
func OfferAccept(account *jtx.Account, offerID string, maker *jtx.Account) *OfferAcceptBuilder {
	return &OfferAcceptBuilder{
		account: account,
		offerID: offerID,
		maker:   maker.Address,
		fee:     10,
	}
}

// Maker overrides the claimed maker address.
func (b *OfferAcceptBuilder) Maker(addr string) *OfferAcceptBuilder {
	b.maker = addr
	return b
}

// Fee sets the transaction fee in base units.
func (b *OfferAcceptBuilder) Fee(f uint64) *OfferAcceptBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *OfferAcceptBuilder) Sequence(seq uint32) *OfferAcceptBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the OfferAccept transaction.
func (b *OfferAcceptBuilder) Build() tx.Transaction {
	o := tx.NewOfferAccept(b.account.Address, b.offerID, b.maker)
	o.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		o.Sequence = b.sequence
	}
	return o
}

// OfferCounterBuilder provides a fluent interface for building
// OfferCounter transactions. The replacement entry key derives from the
// counter-maker and the new asset pair.
type OfferCounterBuilder struct {
	account       *jtx.Account
	offerID       string
	offerAsset    string
	offerAmount   amount.Amount
	receiveAsset  string
	receiveAmount amount.Amount
	expiration    *int64
	newOfferID    string
	salt          *uint8
	fee           uint64
	sequence      *uint32
}

// OfferCounter creates a new OfferCounterBuilder replacing the named
// offer with new terms.
func OfferCounter(account *jtx.Account, offerID, offerAsset string, offerAmount amount.Amount, receiveAsset string, receiveAmount amount.Amount) *OfferCounterBuilder {
	return &OfferCounterBuilder{
		account:       account,
		offerID:       offerID,
		offerAsset:    offerAsset,
		offerAmount:   offerAmount,
		receiveAsset:  receiveAsset,
		receiveAmount: receiveAmount,
		fee:           10,
	}
}

// Expiration sets the unix second the replacement offer lapses after.
func (b *OfferCounterBuilder) Expiration(unix int64) *OfferCounterBuilder {
	b.expiration = &unix
	return b
}

// NewOfferID overrides the derived replacement entry key.
func (b *OfferCounterBuilder) NewOfferID(id string) *OfferCounterBuilder {
	b.newOfferID = id
	return b
}

// Salt overrides the derived salt.
func (b *OfferCounterBuilder) Salt(s uint8) *OfferCounterBuilder {
	b.salt = &s
	return b
}

// Fee sets the transaction fee in base units.
func (b *OfferCounterBuilder) Fee(f uint64) *OfferCounterBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *OfferCounterBuilder) Sequence(seq uint32) *OfferCounterBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the OfferCounter transaction.
func (b *OfferCounterBuilder) Build() tx.Transaction {
	o := tx.NewOfferCounter(b.account.Address, b.offerID,
		b.offerAsset, b.offerAmount.String(),
		b.receiveAsset, b.receiveAmount.String())
	o.Expiration = b.expiration
	o.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		o.Sequence = b.sequence
	}
	if err := o.DeriveNewID(); err != nil {
		panic("derive counter-offer address: " + err.Error())
	}
	if b.newOfferID != "" {
		o.NewOfferID = b.newOfferID
	}
	if b.salt != nil {
		o.Salt = *b.salt
	}
	return o
}

// BuildOfferCounter returns the concrete *tx.OfferCounter type.
func (b *OfferCounterBuilder) BuildOfferCounter() *tx.OfferCounter {
	return b.Build().(*tx.OfferCounter)
}

// OfferCancelBuilder provides a fluent interface for building
// OfferCancel transactions.
type OfferCancelBuilder struct {
	account  *jtx.Account
	offerID  string
	fee      uint64
	sequence *uint32
}

// OfferCancel creates a new OfferCancelBuilder withdrawing the named
// offer.
func OfferCancel(account *jtx.Account, offerID string) *OfferCancelBuilder {
	return &OfferCancelBuilder{
		account: account,
		offerID: offerID,
		fee:     10,
	}
}

// Fee sets the transaction fee in base units.
func (b *OfferCancelBuilder) Fee(f uint64) *OfferCancelBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *OfferCancelBuilder) Sequence(seq uint32) *OfferCancelBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the OfferCancel transaction.
func (b *OfferCancelBuilder) Build() tx.Transaction {
	o := tx.NewOfferCancel(b.account.Address, b.offerID)
	o.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		o.Sequence = b.sequence
	}
	return o
}

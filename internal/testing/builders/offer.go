package builders

import (
	"strconv"
	"time"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// OfferCreateBuilder provides a fluent interface for building
// OfferCreate transactions. Build derives the offer address from the
// maker and asset pair.
type OfferCreateBuilder struct {
	account       *Account
	kind          string
	offerAsset    string
	offerAmount   amount.Amount
	receiveAsset  string
	receiveAmount amount.Amount
	destination   string
	expiration    *int64
	fee           uint64
	sequence      *uint32
}

// Offer creates an OfferCreateBuilder. Assets are "native" or an asset
// key in hex.
func Offer(account *Account, kind, offerAsset string, offerAmount amount.Amount, receiveAsset string, receiveAmount amount.Amount) *OfferCreateBuilder {
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
func (b *OfferCreateBuilder) Destination(taker *Account) *OfferCreateBuilder {
	b.destination = taker.Address
	return b
}

// Expiration sets the time the offer lapses.
func (b *OfferCreateBuilder) Expiration(t time.Time) *OfferCreateBuilder {
	v := t.Unix()
	b.expiration = &v
	return b
}

// ExpirationUnix sets the expiration in unix seconds.
func (b *OfferCreateBuilder) ExpirationUnix(v int64) *OfferCreateBuilder {
	b.expiration = &v
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

// Build constructs the OfferCreate transaction. It panics when the
// offer address cannot be derived from the builder's inputs.
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
	return o
}

// BuildOfferCreate returns the concrete *tx.OfferCreate type.
func (b *OfferCreateBuilder) BuildOfferCreate() *tx.OfferCreate {
	return b.Build().(*tx.OfferCreate)
}

// OfferAcceptBuilder provides a fluent interface for building
// OfferAccept transactions.
type OfferAcceptBuilder struct {
	account  *Account
	offerID  string
	maker    *Account
	fee      uint64
	sequence *uint32
}

// Accept creates an OfferAcceptBuilder settling the named offer.
func Accept(account *Account, offerID string, maker *Account) *OfferAcceptBuilder {
	return &OfferAcceptBuilder{
		account: account,
		offerID: offerID,
		maker:   maker,
		fee:     10,
	}
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
	o := tx.NewOfferAccept(b.account.Address, b.offerID, b.maker.Address)
	o.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		o.Sequence = b.sequence
	}
	return o
}

// OfferCounterBuilder provides a fluent interface for building
// OfferCounter transactions. Build derives the counter-offer address
// from the sender and the new asset pair.
type OfferCounterBuilder struct {
	account       *Account
	offerID       string
	offerAsset    string
	offerAmount   amount.Amount
	receiveAsset  string
	receiveAmount amount.Amount
	expiration    *int64
	fee           uint64
	sequence      *uint32
}

// Counter creates an OfferCounterBuilder replacing the named offer with
// new terms.
func Counter(account *Account, offerID, offerAsset string, offerAmount amount.Amount, receiveAsset string, receiveAmount amount.Amount) *OfferCounterBuilder {
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

// Expiration sets the time the counter-offer lapses.
func (b *OfferCounterBuilder) Expiration(t time.Time) *OfferCounterBuilder {
	v := t.Unix()
	b.expiration = &v
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

// Build constructs the OfferCounter transaction. It panics when the
// counter-offer address cannot be derived from the builder's inputs.
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
	return o
}

// BuildOfferCounter returns the concrete *tx.OfferCounter type.
func (b *OfferCounterBuilder) BuildOfferCounter() *tx.OfferCounter {
	return b.Build().(*tx.OfferCounter)
}

// OfferCancelBuilder provides a fluent interface for building
// OfferCancel transactions.
type OfferCancelBuilder struct {
	account  *Account
	offerID  string
	fee      uint64
	sequence *uint32
}

// Cancel creates an OfferCancelBuilder withdrawing the named offer.
func Cancel(account *Account, offerID string) *OfferCancelBuilder {
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

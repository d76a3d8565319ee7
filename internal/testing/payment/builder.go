// Package payment exercises the Payment transactor end to end: native
// transfers, account funding at the reserve floor, and token moves
// between holdings.
package payment

import (
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// PaymentBuilder provides a fluent interface for building Payment
// transactions against test accounts.
type PaymentBuilder struct {
	from        *jtx.Account
	destination string
	amount      string
	asset       string
	precision   *uint8
	fee         uint64
	sequence    *uint32
}

// Pay creates a PaymentBuilder for a native payment.
func Pay(from, to *jtx.Account, amt amount.Amount) *PaymentBuilder {
	return &PaymentBuilder{
		from:        from,
		destination: to.Address,
		amount:      amt.String(),
		fee:         10,
	}
}

// PayToken creates a PaymentBuilder for a token payment of the given
// asset.
func PayToken(from, to *jtx.Account, asset string, amt amount.Amount) *PaymentBuilder {
	return &PaymentBuilder{
		from:        from,
		destination: to.Address,
		amount:      amt.String(),
		asset:       asset,
		fee:         10,
	}
}

// DestinationAddress replaces the destination with a raw address
// string, bypassing account bookkeeping.
func (b *PaymentBuilder) DestinationAddress(addr string) *PaymentBuilder {
	b.destination = addr
	return b
}

// Amount replaces the amount with a raw string.
func (b *PaymentBuilder) Amount(s string) *PaymentBuilder {
	b.amount = s
	return b
}

// Precision pins the expected asset precision. Setting it on a native
// payment builds an invalid transaction.
func (b *PaymentBuilder) Precision(p uint8) *PaymentBuilder {
	b.precision = &p
	return b
}

// Fee sets the transaction fee in base units.
func (b *PaymentBuilder) Fee(f uint64) *PaymentBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *PaymentBuilder) Sequence(seq uint32) *PaymentBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the Payment transaction.
func (b *PaymentBuilder) Build() tx.Transaction {
	var p *tx.Payment
	if b.asset != "" {
		p = tx.NewTokenPayment(b.from.Address, b.destination, b.asset, b.amount)
	} else {
		p = tx.NewPayment(b.from.Address, b.destination, b.amount)
	}
	p.Precision = b.precision
	p.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		p.Sequence = b.sequence
	}
	return p
}

// BuildPayment returns the concrete *tx.Payment type.
func (b *PaymentBuilder) BuildPayment() *tx.Payment {
	return b.Build().(*tx.Payment)
}

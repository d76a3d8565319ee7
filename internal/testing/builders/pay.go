package builders

import (
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// PaymentBuilder provides a fluent interface for building Payment
// transactions.
type PaymentBuilder struct {
	from      *Account
	to        *Account
	amount    amount.Amount
	asset     string
	precision *uint8
	fee       uint64
	sequence  *uint32
	memos     []tx.MemoWrapper
}

// Pay creates a PaymentBuilder for a native payment.
func Pay(from, to *Account, amt amount.Amount) *PaymentBuilder {
	return &PaymentBuilder{
		from:   from,
		to:     to,
		amount: amt,
		fee:    10,
	}
}

// PayToken creates a PaymentBuilder for a token payment of the given
// asset.
func PayToken(from, to *Account, asset string, amt amount.Amount) *PaymentBuilder {
	return &PaymentBuilder{
		from:   from,
		to:     to,
		amount: amt,
		asset:  asset,
		fee:    10,
	}
}

// Precision pins the expected asset precision on a token payment.
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

// WithMemo adds a memo to the transaction.
func (b *PaymentBuilder) WithMemo(memoType, memoData, memoFormat string) *PaymentBuilder {
	b.memos = append(b.memos, tx.MemoWrapper{
		Memo: tx.Memo{
			MemoType:   memoType,
			MemoData:   memoData,
			MemoFormat: memoFormat,
		},
	})
	return b
}

// Build constructs the Payment transaction.
func (b *PaymentBuilder) Build() tx.Transaction {
	var p *tx.Payment
	if b.asset != "" {
		p = tx.NewTokenPayment(b.from.Address, b.to.Address, b.asset, b.amount.String())
		p.Precision = b.precision
	} else {
		p = tx.NewPayment(b.from.Address, b.to.Address, b.amount.String())
	}
	p.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		p.Sequence = b.sequence
	}
	if len(b.memos) > 0 {
		p.Memos = b.memos
	}
	return p
}

// BuildPayment returns the concrete *tx.Payment type.
func (b *PaymentBuilder) BuildPayment() *tx.Payment {
	return b.Build().(*tx.Payment)
}

package builders

import (
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// AssetCreateBuilder provides a fluent interface for building
// AssetCreate transactions.
type AssetCreateBuilder struct {
	account   *Account
	code      string
	precision uint8
	fee       uint64
	sequence  *uint32
}

// CreateAsset creates an AssetCreateBuilder registering a token under
// the issuer's account.
func CreateAsset(account *Account, code string, precision uint8) *AssetCreateBuilder {
	return &AssetCreateBuilder{
		account:   account,
		code:      code,
		precision: precision,
		fee:       10,
	}
}

// Fee sets the transaction fee in base units.
func (b *AssetCreateBuilder) Fee(f uint64) *AssetCreateBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *AssetCreateBuilder) Sequence(seq uint32) *AssetCreateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the AssetCreate transaction.
func (b *AssetCreateBuilder) Build() tx.Transaction {
	a := tx.NewAssetCreate(b.account.Address, b.code, b.precision)
	a.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		a.Sequence = b.sequence
	}
	return a
}

// AssetIssueBuilder provides a fluent interface for building
// AssetIssue transactions.
type AssetIssueBuilder struct {
	account     *Account
	asset       string
	destination string
	amount      amount.Amount
	fee         uint64
	sequence    *uint32
}

// IssueAsset creates an AssetIssueBuilder minting tokens to the
// destination's holding.
func IssueAsset(account *Account, asset string, destination *Account, amt amount.Amount) *AssetIssueBuilder {
	return &AssetIssueBuilder{
		account:     account,
		asset:       asset,
		destination: destination.Address,
		amount:      amt,
		fee:         10,
	}
}

// Fee sets the transaction fee in base units.
func (b *AssetIssueBuilder) Fee(f uint64) *AssetIssueBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *AssetIssueBuilder) Sequence(seq uint32) *AssetIssueBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the AssetIssue transaction.
func (b *AssetIssueBuilder) Build() tx.Transaction {
	a := tx.NewAssetIssue(b.account.Address, b.asset, b.destination, b.amount.String())
	a.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		a.Sequence = b.sequence
	}
	return a
}

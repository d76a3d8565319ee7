// Package asset exercises token registration and minting: the registry
// keyed by issuer and code, issuer-only supply, and holdings opened by
// the first credit.
package asset

import (
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// CreateBuilder provides a fluent interface for building AssetCreate
// transactions.
type CreateBuilder struct {
	account   *jtx.Account
	code      string
	precision uint8
	fee       uint64
	sequence  *uint32
}

// Create creates a CreateBuilder registering code under the account.
func Create(account *jtx.Account, code string, precision uint8) *CreateBuilder {
	return &CreateBuilder{
		account:   account,
		code:      code,
		precision: precision,
		fee:       10,
	}
}

// Fee sets the transaction fee in base units.
func (b *CreateBuilder) Fee(f uint64) *CreateBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *CreateBuilder) Sequence(seq uint32) *CreateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the AssetCreate transaction.
func (b *CreateBuilder) Build() tx.Transaction {
	a := tx.NewAssetCreate(b.account.Address, b.code, b.precision)
	a.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		a.Sequence = b.sequence
	}
	return a
}

// IssueBuilder provides a fluent interface for building AssetIssue
// transactions.
type IssueBuilder struct {
	account     *jtx.Account
	asset       string
	destination string
	amount      string
	fee         uint64
	sequence    *uint32
}

// Issue creates an IssueBuilder minting amt of the asset to the
// destination.
func Issue(account *jtx.Account, asset string, to *jtx.Account, amt amount.Amount) *IssueBuilder {
	return &IssueBuilder{
		account:     account,
		asset:       asset,
		destination: to.Address,
		amount:      amt.String(),
		fee:         10,
	}
}

// DestinationAddress replaces the destination with a raw address
// string.
func (b *IssueBuilder) DestinationAddress(addr string) *IssueBuilder {
	b.destination = addr
	return b
}

// Amount replaces the amount with a raw string.
func (b *IssueBuilder) Amount(s string) *IssueBuilder {
	b.amount = s
	return b
}

// Fee sets the transaction fee in base units.
func (b *IssueBuilder) Fee(f uint64) *IssueBuilder {
	b.fee = f
	return b
}

// Sequence sets the sequence number explicitly.
func (b *IssueBuilder) Sequence(seq uint32) *IssueBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the AssetIssue transaction.
func (b *IssueBuilder) Build() tx.Transaction {
	a := tx.NewAssetIssue(b.account.Address, b.asset, b.destination, b.amount)
	a.Fee = strconv.FormatUint(b.fee, 10)
	if b.sequence != nil {
		a.Sequence = b.sequence
	}
	return a
}

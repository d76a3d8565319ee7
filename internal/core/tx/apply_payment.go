package tx

import (
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// Apply delivers the payment. Native payments to unfunded addresses
// create the destination account, so long as the delivered amount meets
// the account reserve.
func (p *Payment) Apply(ctx *ApplyContext) Result {
	amt, err := parseAmountValue(p.Amount)
	if err != nil {
		return TemBAD_AMOUNT
	}
	destID, err := DecodeAccountID(p.Destination)
	if err != nil {
		return TemDST_NEEDED
	}

	if p.Asset != "" {
		ref, err := parseAssetSpec(p.Asset)
		if err != nil || ref.IsNative() {
			return TemMALFORMED
		}
		// Tokens need an account to hang the holding on.
		exists, err2 := ctx.View.Exists(keylet.Account(destID))
		if err2 != nil {
			return TefINTERNAL
		}
		if !exists {
			return TecNO_ENTRY
		}
		r := transferToken(ctx, ExternalSignature{Account: ctx.AccountID}, ref.ID,
			ctx.AccountID, destID, amt, p.Precision, true)
		if r != TesSUCCESS {
			return r
		}
		ctx.Metadata.DeliveredAmount = &amt
		return TesSUCCESS
	}

	exists, err := ctx.View.Exists(keylet.Account(destID))
	if err != nil {
		return TefINTERNAL
	}
	if exists {
		r := transferNative(ctx, ExternalSignature{Account: ctx.AccountID}, ctx.AccountID, destID, amt)
		if r != TesSUCCESS {
			return r
		}
		ctx.Metadata.DeliveredAmount = &amt
		return TesSUCCESS
	}

	// Funding a new account: the opening balance must meet the reserve
	// or the account would be born unusable.
	if amt < ctx.Config.Fees.Reserve {
		return TecINSUFFICIENT_RESERVE
	}
	if r := debitNative(ctx, ctx.AccountID, amt); r != TesSUCCESS {
		return r
	}
	if err := createAccount(ctx.View, &record.AccountRoot{
		Account:  destID,
		Sequence: 1,
		Balance:  amt,
	}); err != nil {
		return TefINTERNAL
	}
	ctx.Metadata.DeliveredAmount = &amt
	return TesSUCCESS
}

package tx

import (
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// Apply registers the asset.
func (a *AssetCreate) Apply(ctx *ApplyContext) Result {
	code, err := record.CodeFromString(a.Code)
	if err != nil {
		return TemMALFORMED
	}
	if a.Precision > record.MaxAssetPrecision {
		return TemMALFORMED
	}

	k := keylet.Asset(ctx.AccountID, code)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return TefINTERNAL
	}
	if exists {
		return TecDUPLICATE
	}

	asset := &record.Asset{
		Issuer:    ctx.AccountID,
		Code:      code,
		Precision: a.Precision,
	}
	if err := ctx.View.Insert(k, record.SerializeAsset(asset)); err != nil {
		return TefINTERNAL
	}
	ctx.Account.OwnerCount++
	return TesSUCCESS
}

// Apply mints supply to the destination's holding, creating the holding
// on first credit.
func (a *AssetIssue) Apply(ctx *ApplyContext) Result {
	assetID, err := parseOfferID(a.Asset)
	if err != nil {
		return TemMALFORMED
	}
	destID, err := DecodeAccountID(a.Destination)
	if err != nil {
		return TemDST_NEEDED
	}
	amt, err := parseAmountValue(a.Amount)
	if err != nil {
		return TemBAD_AMOUNT
	}

	asset, r := loadAssetRegistry(ctx, assetID)
	if r != TesSUCCESS {
		return r
	}
	if asset.Issuer != ctx.AccountID {
		return TecNO_PERMISSION
	}
	supply, err := asset.Supply.Add(amt)
	if err != nil {
		return TecOVERFLOW
	}

	destAccountExists, err := ctx.View.Exists(keylet.Account(destID))
	if err != nil {
		return TefINTERNAL
	}
	if !destAccountExists {
		return TecNO_ENTRY
	}

	holdingKey := keylet.Holding(destID, assetID)
	holdingExists, err := ctx.View.Exists(holdingKey)
	if err != nil {
		return TefINTERNAL
	}
	var holding *record.Holding
	if holdingExists {
		holding, r = loadHolding(ctx, destID, assetID)
		if r != TesSUCCESS {
			return r
		}
	} else {
		holding = &record.Holding{Owner: destID, Asset: assetID}
	}
	balance, err := holding.Balance.Add(amt)
	if err != nil {
		return TecOVERFLOW
	}
	holding.Balance = balance

	asset.Supply = supply
	if err := ctx.View.Update(keylet.Keylet{Type: record.TypeAsset, Key: assetID}, record.SerializeAsset(asset)); err != nil {
		return TefINTERNAL
	}
	if holdingExists {
		if r := saveHolding(ctx, holding); r != TesSUCCESS {
			return r
		}
	} else if err := ctx.View.Insert(holdingKey, record.SerializeHolding(holding)); err != nil {
		return TefINTERNAL
	}
	ctx.Metadata.DeliveredAmount = &amt
	return TesSUCCESS
}

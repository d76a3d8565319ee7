package tx

import (
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// Authority identifies who sanctions a debit. Exactly two forms exist:
// the signature of the transaction's own sender, and the engine-held
// authority of a derived offer entry.
type Authority interface {
	isAuthority()
}

// ExternalSignature is the authority of the account that signed the
// transaction being applied.
type ExternalSignature struct {
	Account [20]byte
}

func (ExternalSignature) isAuthority() {}

// DerivedAuthority is the authority of a derived offer entry. No party
// holds a signing key for the entry's address, so the authority is
// validated by re-deriving the address from the seed tuple: it is good
// only when the tuple yields exactly the claimed key and salt.
type DerivedAuthority struct {
	Maker        [20]byte
	OfferAsset   record.AssetRef
	ReceiveAsset record.AssetRef
	Salt         uint8
	OfferKey     [32]byte
}

func (DerivedAuthority) isAuthority() {}

// derivedFromOffer builds the derived authority of a loaded offer record
// at its entry key.
func derivedFromOffer(o *record.Offer, key [32]byte) DerivedAuthority {
	return DerivedAuthority{
		Maker:        o.Maker,
		OfferAsset:   o.OfferAsset,
		ReceiveAsset: o.ReceiveAsset,
		Salt:         o.Salt,
		OfferKey:     key,
	}
}

// verifyAuthority validates an authority and returns the account on
// whose behalf it may move funds: the signer itself, or the maker whose
// standing consent the derived entry embodies.
func verifyAuthority(ctx *ApplyContext, auth Authority) ([20]byte, Result) {
	switch a := auth.(type) {
	case ExternalSignature:
		if a.Account != ctx.AccountID {
			return [20]byte{}, TecNO_PERMISSION
		}
		return a.Account, TesSUCCESS
	case DerivedAuthority:
		k, salt, err := keylet.FindOffer(a.Maker, a.OfferAsset, a.ReceiveAsset)
		if err != nil {
			return [20]byte{}, TecADDRESS_MISMATCH
		}
		if k.Key != a.OfferKey || salt != a.Salt {
			return [20]byte{}, TecADDRESS_MISMATCH
		}
		return a.Maker, TesSUCCESS
	default:
		return [20]byte{}, TecNO_PERMISSION
	}
}

// accountFor returns the working copy of an account. The sender's funds
// already live in ctx.Account, charged and threaded by the engine;
// loading it again from the view would fork that state, so the sender
// is always routed through the context copy.
func accountFor(ctx *ApplyContext, id [20]byte) (*record.AccountRoot, bool, Result) {
	if id == ctx.AccountID {
		return ctx.Account, true, TesSUCCESS
	}
	acct, err := loadAccount(ctx.View, id)
	if err == ErrAccountNotFound {
		return nil, false, TecNO_ENTRY
	}
	if err != nil {
		return nil, false, TefINTERNAL
	}
	return acct, false, TesSUCCESS
}

// storeAccount persists a working account copy. The sender's copy is
// written by the engine after the transactor returns.
func storeAccount(ctx *ApplyContext, acct *record.AccountRoot, isSender bool) Result {
	if isSender {
		return TesSUCCESS
	}
	if err := saveAccount(ctx.View, acct); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// debitNative removes amt from an account's native balance. Having the
// funds at all and keeping the reserve floor intact fail differently,
// so callers can surface which constraint blocked the debit.
func debitNative(ctx *ApplyContext, from [20]byte, amt amount.Amount) Result {
	acct, isSender, r := accountFor(ctx, from)
	if r != TesSUCCESS {
		return r
	}
	if acct.Balance < amt {
		return TecUNFUNDED
	}
	remaining, err := acct.Balance.Sub(amt)
	if err != nil {
		return TecOVERFLOW
	}
	if remaining < ctx.Config.Fees.Reserve {
		return TecINSUFFICIENT_RESERVE
	}
	acct.Balance = remaining
	return storeAccount(ctx, acct, isSender)
}

// creditNative adds amt to an existing account's native balance.
func creditNative(ctx *ApplyContext, to [20]byte, amt amount.Amount) Result {
	acct, isSender, r := accountFor(ctx, to)
	if r != TesSUCCESS {
		return r
	}
	balance, err := acct.Balance.Add(amt)
	if err != nil {
		return TecOVERFLOW
	}
	acct.Balance = balance
	return storeAccount(ctx, acct, isSender)
}

// transferNative moves native units between two accounts under an
// authority that must speak for the debited side.
func transferNative(ctx *ApplyContext, auth Authority, from, to [20]byte, amt amount.Amount) Result {
	onBehalf, r := verifyAuthority(ctx, auth)
	if r != TesSUCCESS {
		return r
	}
	if onBehalf != from {
		return TecNO_PERMISSION
	}
	if r := debitNative(ctx, from, amt); r != TesSUCCESS {
		return r
	}
	return creditNative(ctx, to, amt)
}

// loadHolding reads and checks one owner's holding of one asset. The
// entry must exist, be shaped as a holding, belong to the owner and be
// denominated in the asset.
func loadHolding(ctx *ApplyContext, owner [20]byte, assetID [32]byte) (*record.Holding, Result) {
	k := keylet.Holding(owner, assetID)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return nil, TefINTERNAL
	}
	if !exists {
		return nil, TecNO_ENTRY
	}
	data, err := ctx.View.Read(k)
	if err != nil {
		return nil, TefINTERNAL
	}
	h, err := record.ParseHolding(data)
	if err != nil {
		return nil, TecBAD_RECORD
	}
	if h.Owner != owner {
		return nil, TecWRONG_OWNER
	}
	if h.Asset != assetID {
		return nil, TecASSET_MISMATCH
	}
	return h, TesSUCCESS
}

// saveHolding writes a holding back through the view.
func saveHolding(ctx *ApplyContext, h *record.Holding) Result {
	if err := ctx.View.Update(keylet.Holding(h.Owner, h.Asset), record.SerializeHolding(h)); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// loadAssetRegistry reads the registry record behind an asset ID.
func loadAssetRegistry(ctx *ApplyContext, assetID [32]byte) (*record.Asset, Result) {
	k := keylet.Keylet{Type: record.TypeAsset, Key: assetID}
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return nil, TefINTERNAL
	}
	if !exists {
		return nil, TecNO_ENTRY
	}
	data, err := ctx.View.Read(k)
	if err != nil {
		return nil, TefINTERNAL
	}
	asset, err := record.ParseAsset(data)
	if err != nil {
		return nil, TecBAD_RECORD
	}
	return asset, TesSUCCESS
}

// transferToken moves value of a registered token from one owner's
// holding to another's. A non-nil expectPrecision is cross-checked
// against the registry, so a caller that believes it is moving
// quantities of a differently scaled token is stopped. When createDest
// is set a missing destination holding is created on first credit;
// otherwise it must already exist.
func transferToken(ctx *ApplyContext, auth Authority, assetID [32]byte, from, to [20]byte, value amount.Amount, expectPrecision *uint8, createDest bool) Result {
	onBehalf, r := verifyAuthority(ctx, auth)
	if r != TesSUCCESS {
		return r
	}
	if onBehalf != from {
		return TecNO_PERMISSION
	}

	asset, r := loadAssetRegistry(ctx, assetID)
	if r != TesSUCCESS {
		return r
	}
	if expectPrecision != nil && *expectPrecision != asset.Precision {
		return TecASSET_MISMATCH
	}

	src, r := loadHolding(ctx, from, assetID)
	if r != TesSUCCESS {
		return r
	}
	if src.Balance < value {
		return TecUNFUNDED
	}

	dstKey := keylet.Holding(to, assetID)
	dstExists, err := ctx.View.Exists(dstKey)
	if err != nil {
		return TefINTERNAL
	}

	var dst *record.Holding
	if dstExists {
		dst, r = loadHolding(ctx, to, assetID)
		if r != TesSUCCESS {
			return r
		}
	} else {
		if !createDest {
			return TecNO_ENTRY
		}
		dst = &record.Holding{Owner: to, Asset: assetID}
	}

	srcBalance, err2 := src.Balance.Sub(value)
	if err2 != nil {
		return TecOVERFLOW
	}
	dstBalance, err2 := dst.Balance.Add(value)
	if err2 != nil {
		return TecOVERFLOW
	}
	src.Balance = srcBalance
	dst.Balance = dstBalance

	if r := saveHolding(ctx, src); r != TesSUCCESS {
		return r
	}
	if dstExists {
		return saveHolding(ctx, dst)
	}
	if err := ctx.View.Insert(dstKey, record.SerializeHolding(dst)); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// releaseEscrow pays out escrowed native units from an offer entry to
// an account. Only the entry's own derived authority may release, and
// only up to the escrowed portion: the entry baseline below it never
// leaves the entry this way. The caller persists the offer record.
func releaseEscrow(ctx *ApplyContext, auth Authority, offerKey [32]byte, offer *record.Offer, amt amount.Amount, to [20]byte) Result {
	da, ok := auth.(DerivedAuthority)
	if !ok {
		return TecNO_PERMISSION
	}
	if da.OfferKey != offerKey {
		return TecADDRESS_MISMATCH
	}
	if _, r := verifyAuthority(ctx, da); r != TesSUCCESS {
		return r
	}

	if offer.EscrowedNative < amt {
		return TecUNFUNDED
	}
	escrowed, err := offer.EscrowedNative.Sub(amt)
	if err != nil {
		return TecOVERFLOW
	}
	balance, err := offer.Balance.Sub(amt)
	if err != nil {
		return TecOVERFLOW
	}
	offer.EscrowedNative = escrowed
	offer.Balance = balance

	return creditNative(ctx, to, amt)
}

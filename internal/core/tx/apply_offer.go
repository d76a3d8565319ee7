package tx

import (
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// offerKeylet wraps an entry key in its keylet for view operations.
func offerKeylet(key [32]byte) keylet.Keylet {
	return keylet.Keylet{Type: record.TypeOffer, Key: key}
}

// loadOffer reads, parses and structurally validates the offer at key.
func loadOffer(ctx *ApplyContext, key [32]byte) (*record.Offer, Result) {
	k := offerKeylet(key)
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
	offer, err := record.ParseOffer(data)
	if err != nil {
		return nil, TecBAD_RECORD
	}
	if err := offer.Validate(); err != nil {
		return nil, TecBAD_RECORD
	}
	return offer, TesSUCCESS
}

// saveOffer writes an offer record back to its slot.
func saveOffer(ctx *ApplyContext, key [32]byte, offer *record.Offer) Result {
	if err := ctx.View.Update(offerKeylet(key), record.SerializeOffer(offer)); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// verifyOfferAddress re-derives the entry key from the record's own
// stored fields. A record that does not live at its derived address, or
// that stores a non-canonical salt, is treated as forged.
func verifyOfferAddress(key [32]byte, offer *record.Offer) Result {
	k, salt, err := keylet.FindOffer(offer.Maker, offer.OfferAsset, offer.ReceiveAsset)
	if err != nil {
		return TecADDRESS_MISMATCH
	}
	if k.Key != key || salt != offer.Salt {
		return TecADDRESS_MISMATCH
	}
	return TesSUCCESS
}

// allocateOfferSlot checks that the target slot can hold a new offer:
// it must be absent, or present but still blank. It reports whether the
// slot already exists so the caller knows to update rather than insert.
func allocateOfferSlot(ctx *ApplyContext, key [32]byte) (bool, Result) {
	k := offerKeylet(key)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return false, TefINTERNAL
	}
	if !exists {
		return false, TesSUCCESS
	}
	data, err := ctx.View.Read(k)
	if err != nil {
		return false, TefINTERNAL
	}
	if !record.IsBlank(data) {
		return true, TecBAD_RECORD
	}
	return true, TesSUCCESS
}

// storeNewOffer persists a freshly built offer into its slot, claiming
// a blank slot in place when one exists.
func storeNewOffer(ctx *ApplyContext, key [32]byte, offer *record.Offer, claim bool) Result {
	data := record.SerializeOffer(offer)
	k := offerKeylet(key)
	var err error
	if claim {
		err = ctx.View.Update(k, data)
	} else {
		err = ctx.View.Insert(k, data)
	}
	if err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// fundEntryBaseline locks the configured baseline from the sender into
// a new entry. A sender that cannot even cover the baseline fails the
// reserve check, not the funding check.
func fundEntryBaseline(ctx *ApplyContext) Result {
	r := debitNative(ctx, ctx.AccountID, ctx.EntryBaseline())
	if r == TecUNFUNDED {
		return TecINSUFFICIENT_RESERVE
	}
	return r
}

// verifyFundedHolding checks that owner holds at least value of the
// asset without moving anything.
func verifyFundedHolding(ctx *ApplyContext, owner [20]byte, assetID [32]byte, value amount.Amount) Result {
	h, r := loadHolding(ctx, owner, assetID)
	if r != TesSUCCESS {
		return r
	}
	if h.Balance < value {
		return TecUNFUNDED
	}
	return TesSUCCESS
}

// Apply opens the offer.
func (o *OfferCreate) Apply(ctx *ApplyContext) Result {
	key, err := parseOfferID(o.OfferID)
	if err != nil {
		return TemMALFORMED
	}
	kind, err := parseOfferKind(o.Kind)
	if err != nil {
		return TemMALFORMED
	}
	offerAsset, receiveAsset, err := parseAssetPair(o.OfferAsset, o.ReceiveAsset)
	if err != nil {
		return parseValidationError(err)
	}
	offerAmount, err := parseAmountValue(o.OfferAmount)
	if err != nil {
		return TemBAD_AMOUNT
	}
	receiveAmount, err := parseAmountValue(o.ReceiveAmount)
	if err != nil {
		return TemBAD_AMOUNT
	}

	derived, salt, err := keylet.FindOffer(ctx.AccountID, offerAsset, receiveAsset)
	if err != nil {
		return TecADDRESS_MISMATCH
	}
	if derived.Key != key || salt != o.Salt {
		return TecADDRESS_MISMATCH
	}

	claim, r := allocateOfferSlot(ctx, key)
	if r != TesSUCCESS {
		return r
	}
	if r := fundEntryBaseline(ctx); r != TesSUCCESS {
		return r
	}

	escrow := amount.New(0)
	if offerAsset.IsNative() {
		if r := debitNative(ctx, ctx.AccountID, offerAmount); r != TesSUCCESS {
			return r
		}
		escrow = offerAmount
	} else {
		if r := verifyFundedHolding(ctx, ctx.AccountID, offerAsset.ID, offerAmount); r != TesSUCCESS {
			return r
		}
	}

	balance, err2 := ctx.EntryBaseline().Add(escrow)
	if err2 != nil {
		return TecOVERFLOW
	}

	offer := &record.Offer{
		Kind:           kind,
		Status:         record.StatusActive,
		Maker:          ctx.AccountID,
		OfferAsset:     offerAsset,
		OfferAmount:    offerAmount,
		ReceiveAsset:   receiveAsset,
		ReceiveAmount:  receiveAmount,
		Balance:        balance,
		EscrowedNative: escrow,
		Salt:           salt,
	}
	if kind == record.KindDirect {
		taker, err := DecodeAccountID(o.Destination)
		if err != nil {
			return TemDST_NEEDED
		}
		offer.Taker = &taker
	}
	if o.Expiration != nil {
		exp := *o.Expiration
		offer.Expiration = &exp
	}

	if r := storeNewOffer(ctx, key, offer, claim); r != TesSUCCESS {
		return r
	}
	ctx.Account.OwnerCount++
	return TesSUCCESS
}

// Apply settles the offer against the sender.
func (o *OfferAccept) Apply(ctx *ApplyContext) Result {
	key, err := parseOfferID(o.OfferID)
	if err != nil {
		return TemMALFORMED
	}
	claimedMaker, err := DecodeAccountID(o.Maker)
	if err != nil {
		return TemMALFORMED
	}

	offer, r := loadOffer(ctx, key)
	if r != TesSUCCESS {
		return r
	}
	if r := verifyOfferAddress(key, offer); r != TesSUCCESS {
		return r
	}
	if offer.Status != record.StatusActive {
		return TecOFFER_NOT_ACTIVE
	}
	if ctx.Expired(offer.Expiration) {
		return TecEXPIRED
	}
	if offer.Kind == record.KindDirect && *offer.Taker != ctx.AccountID {
		return TecNO_PERMISSION
	}
	if claimedMaker != offer.Maker {
		return TecOFFER_MISMATCH
	}

	if offer.EscrowedNative > 0 {
		// Escrowed native against the acceptor's tokens. Both token
		// holdings must already exist; settlement creates nothing.
		if _, r := loadHolding(ctx, ctx.AccountID, offer.ReceiveAsset.ID); r != TesSUCCESS {
			return r
		}
		if _, r := loadHolding(ctx, offer.Maker, offer.ReceiveAsset.ID); r != TesSUCCESS {
			return r
		}

		auth := derivedFromOffer(offer, key)
		if r := releaseEscrow(ctx, auth, key, offer, offer.EscrowedNative, offer.Maker); r != TesSUCCESS {
			return r
		}
		r := transferToken(ctx, ExternalSignature{Account: ctx.AccountID}, offer.ReceiveAsset.ID,
			ctx.AccountID, offer.Maker, offer.ReceiveAmount, nil, false)
		if r != TesSUCCESS {
			return r
		}
	} else {
		// The maker's tokens against the acceptor's native units or
		// tokens. The offered leg moves under the entry's derived
		// authority: the record itself is the maker's standing consent.
		if _, r := loadHolding(ctx, offer.Maker, offer.OfferAsset.ID); r != TesSUCCESS {
			return r
		}
		if _, r := loadHolding(ctx, ctx.AccountID, offer.OfferAsset.ID); r != TesSUCCESS {
			return r
		}
		if !offer.ReceiveAsset.IsNative() {
			if _, r := loadHolding(ctx, ctx.AccountID, offer.ReceiveAsset.ID); r != TesSUCCESS {
				return r
			}
			if _, r := loadHolding(ctx, offer.Maker, offer.ReceiveAsset.ID); r != TesSUCCESS {
				return r
			}
		}

		r := transferToken(ctx, derivedFromOffer(offer, key), offer.OfferAsset.ID,
			offer.Maker, ctx.AccountID, offer.OfferAmount, nil, false)
		if r != TesSUCCESS {
			return r
		}
		signer := ExternalSignature{Account: ctx.AccountID}
		if offer.ReceiveAsset.IsNative() {
			r = transferNative(ctx, signer, ctx.AccountID, offer.Maker, offer.ReceiveAmount)
		} else {
			r = transferToken(ctx, signer, offer.ReceiveAsset.ID,
				ctx.AccountID, offer.Maker, offer.ReceiveAmount, nil, false)
		}
		if r != TesSUCCESS {
			return r
		}
	}

	delivered := offer.ReceiveAmount
	ctx.Metadata.DeliveredAmount = &delivered

	offer.Status = record.StatusAccepted
	return saveOffer(ctx, key, offer)
}

// ApplyOnTec marks the offer expired after a tecEXPIRED accept. It runs
// against the base view once the staged settlement has been discarded,
// so the expiry marking and escrow refund survive the failed accept.
// The refund keeps escrow out of a retired entry; the baseline stays.
func (o *OfferAccept) ApplyOnTec(ctx *ApplyContext) {
	key, err := parseOfferID(o.OfferID)
	if err != nil {
		return
	}
	offer, r := loadOffer(ctx, key)
	if r != TesSUCCESS {
		return
	}
	if offer.Status != record.StatusActive || !ctx.Expired(offer.Expiration) {
		return
	}

	if offer.EscrowedNative > 0 {
		refund := offer.EscrowedNative
		balance, err := offer.Balance.Sub(refund)
		if err != nil {
			return
		}
		maker, err := loadAccount(ctx.View, offer.Maker)
		if err != nil {
			return
		}
		credited, err := maker.Balance.Add(refund)
		if err != nil {
			return
		}
		maker.Balance = credited
		offer.Balance = balance
		offer.EscrowedNative = amount.New(0)
		if err := saveAccount(ctx.View, maker); err != nil {
			return
		}
	}

	offer.Status = record.StatusExpired
	saveOffer(ctx, key, offer)
}

// Apply retires the original offer and opens the replacement.
func (o *OfferCounter) Apply(ctx *ApplyContext) Result {
	origKey, err := parseOfferID(o.OfferID)
	if err != nil {
		return TemMALFORMED
	}
	newKey, err := parseOfferID(o.NewOfferID)
	if err != nil {
		return TemMALFORMED
	}
	offerAsset, receiveAsset, err := parseAssetPair(o.OfferAsset, o.ReceiveAsset)
	if err != nil {
		return parseValidationError(err)
	}
	offerAmount, err := parseAmountValue(o.OfferAmount)
	if err != nil {
		return TemBAD_AMOUNT
	}
	receiveAmount, err := parseAmountValue(o.ReceiveAmount)
	if err != nil {
		return TemBAD_AMOUNT
	}

	orig, r := loadOffer(ctx, origKey)
	if r != TesSUCCESS {
		return r
	}
	if r := verifyOfferAddress(origKey, orig); r != TesSUCCESS {
		return r
	}
	if orig.Status != record.StatusActive {
		return TecOFFER_NOT_ACTIVE
	}
	if ctx.AccountID != orig.Maker && (orig.Taker == nil || *orig.Taker != ctx.AccountID) {
		return TecNO_PERMISSION
	}

	if orig.EscrowedNative > 0 {
		auth := derivedFromOffer(orig, origKey)
		if r := releaseEscrow(ctx, auth, origKey, orig, orig.EscrowedNative, orig.Maker); r != TesSUCCESS {
			return r
		}
	}

	derived, salt, err := keylet.FindOffer(ctx.AccountID, offerAsset, receiveAsset)
	if err != nil {
		return TecADDRESS_MISMATCH
	}
	if derived.Key != newKey || salt != o.Salt {
		return TecADDRESS_MISMATCH
	}
	claim, r := allocateOfferSlot(ctx, newKey)
	if r != TesSUCCESS {
		return r
	}
	if r := fundEntryBaseline(ctx); r != TesSUCCESS {
		return r
	}

	escrow := amount.New(0)
	if offerAsset.IsNative() {
		if r := debitNative(ctx, ctx.AccountID, offerAmount); r != TesSUCCESS {
			return r
		}
		escrow = offerAmount
	} else {
		if r := verifyFundedHolding(ctx, ctx.AccountID, offerAsset.ID, offerAmount); r != TesSUCCESS {
			return r
		}
	}

	// Role swap: a counter by the maker keeps the original taker, a
	// counter by the taker targets the original maker.
	var taker *[20]byte
	if ctx.AccountID == orig.Maker {
		if orig.Taker != nil {
			t := *orig.Taker
			taker = &t
		}
	} else {
		t := orig.Maker
		taker = &t
	}

	balance, err2 := ctx.EntryBaseline().Add(escrow)
	if err2 != nil {
		return TecOVERFLOW
	}
	origin := origKey

	counter := &record.Offer{
		Kind:           orig.Kind,
		Status:         record.StatusActive,
		Maker:          ctx.AccountID,
		Taker:          taker,
		OfferAsset:     offerAsset,
		OfferAmount:    offerAmount,
		ReceiveAsset:   receiveAsset,
		ReceiveAmount:  receiveAmount,
		Balance:        balance,
		EscrowedNative: escrow,
		IsCounter:      true,
		OriginOffer:    &origin,
		Salt:           salt,
	}
	if o.Expiration != nil {
		exp := *o.Expiration
		counter.Expiration = &exp
	}

	orig.Status = record.StatusCountered
	if r := saveOffer(ctx, origKey, orig); r != TesSUCCESS {
		return r
	}
	if r := storeNewOffer(ctx, newKey, counter, claim); r != TesSUCCESS {
		return r
	}
	ctx.Account.OwnerCount++
	return TesSUCCESS
}

// Apply withdraws the offer.
func (o *OfferCancel) Apply(ctx *ApplyContext) Result {
	key, err := parseOfferID(o.OfferID)
	if err != nil {
		return TemMALFORMED
	}

	offer, r := loadOffer(ctx, key)
	if r != TesSUCCESS {
		return r
	}
	if r := verifyOfferAddress(key, offer); r != TesSUCCESS {
		return r
	}
	if ctx.AccountID != offer.Maker {
		return TecNO_PERMISSION
	}
	if offer.Status != record.StatusActive {
		return TecOFFER_NOT_ACTIVE
	}

	if offer.EscrowedNative > 0 {
		auth := derivedFromOffer(offer, key)
		if r := releaseEscrow(ctx, auth, key, offer, offer.EscrowedNative, offer.Maker); r != TesSUCCESS {
			return r
		}
	}

	offer.Status = record.StatusDeclined
	return saveOffer(ctx, key, offer)
}

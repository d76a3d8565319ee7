package testing

import (
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// TestEnv manages a test ledger environment: a genesis ledger, an open
// ledger on top of it, a manual clock, and the accounts a test creates.
// Transactions are judged exactly as a standalone node would judge them.
type TestEnv struct {
	t        *testing.T
	ledger   *ledger.Ledger
	clock    *ManualClock
	accounts map[string]*Account

	// closedHashes keeps the hash of every ledger the environment has
	// closed, keyed by sequence.
	closedHashes map[uint32][32]byte

	fees amount.Fees

	// feesBurned accumulates the fees every applied transaction
	// destroyed. Native supply conservation checks need it.
	feesBurned amount.Amount
}

// NewTestEnv creates a test environment over a default genesis ledger.
// The genesis ledger closes at the clock's starting time, so expiration
// checks line up with the clock from the first transaction on.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	clock := NewManualClock()
	cfg := genesis.DefaultConfig()
	cfg.CloseTime = networkTime(clock.Now())
	return newTestEnv(t, clock, cfg)
}

// NewTestEnvWithConfig creates a test environment over a genesis ledger
// built from the given configuration.
func NewTestEnvWithConfig(t *testing.T, cfg genesis.Config) *TestEnv {
	t.Helper()
	clock := NewManualClock()
	if cfg.CloseTime == 0 {
		cfg.CloseTime = networkTime(clock.Now())
	}
	return newTestEnv(t, clock, cfg)
}

func newTestEnv(t *testing.T, clock *ManualClock, cfg genesis.Config) *TestEnv {
	t.Helper()

	gen, err := genesis.Create(cfg)
	if err != nil {
		t.Fatalf("create genesis ledger: %v", err)
	}
	open, err := ledger.NewFrom(gen)
	if err != nil {
		t.Fatalf("open ledger from genesis: %v", err)
	}

	env := &TestEnv{
		t:            t,
		ledger:       open,
		clock:        clock,
		accounts:     make(map[string]*Account),
		closedHashes: map[uint32][32]byte{gen.Sequence(): gen.Hash()},
		fees:         open.Fees(),
	}

	master := MasterAccount()
	env.accounts[master.Name] = master
	return env
}

// networkTime converts a wall-clock instant to ledger close-time
// seconds.
func networkTime(t time.Time) uint32 {
	return header.ToNetworkTime(t)
}

// Clock returns the environment's manual clock.
func (e *TestEnv) Clock() *ManualClock { return e.clock }

// Ledger returns the current open ledger.
func (e *TestEnv) Ledger() *ledger.Ledger { return e.ledger }

// Fees returns the fee schedule the environment runs under.
func (e *TestEnv) Fees() amount.Fees { return e.fees }

// Master returns the genesis master account.
func (e *TestEnv) Master() *Account {
	return e.accounts["master"]
}

// LedgerSeq returns the sequence of the current open ledger.
func (e *TestEnv) LedgerSeq() uint32 {
	return e.ledger.Sequence()
}

// Fund creates the given accounts with a default balance of 1000 SWP
// paid from the master account.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		e.FundAmount(acc, amount.SWP(1000))
	}
}

// FundAmount creates an account with a specific balance paid from the
// master account.
func (e *TestEnv) FundAmount(acc *Account, amt amount.Amount) {
	e.t.Helper()
	e.accounts[acc.Name] = acc

	p := tx.NewPayment(e.Master().Address, acc.Address, amt.String())
	result := e.Submit(p)
	if !result.Success {
		e.t.Fatalf("fund account %s: %s (%s)", acc.Name, result.Code, result.Message)
	}
}

// Pay tops up an existing account from the master account.
func (e *TestEnv) Pay(acc *Account, amt amount.Amount) {
	e.t.Helper()
	p := tx.NewPayment(e.Master().Address, acc.Address, amt.String())
	result := e.Submit(p)
	if !result.Success {
		e.t.Fatalf("pay %v to %s: %s (%s)", amt, acc.Name, result.Code, result.Message)
	}
}

// Close closes the current open ledger and starts the next one. The
// clock advances ten seconds, like a standalone node's close schedule.
func (e *TestEnv) Close() {
	e.t.Helper()

	e.clock.Advance(10 * time.Second)
	if err := e.ledger.Close(networkTime(e.clock.Now())); err != nil {
		e.t.Fatalf("close ledger: %v", err)
	}
	e.ledger.SetValidated()
	e.closedHashes[e.ledger.Sequence()] = e.ledger.Hash()

	next, err := ledger.NewFrom(e.ledger)
	if err != nil {
		e.t.Fatalf("open next ledger: %v", err)
	}
	e.ledger = next
}

// CloseAt closes ledgers until the open ledger reaches the target
// sequence.
func (e *TestEnv) CloseAt(targetSeq uint32) {
	e.t.Helper()
	for e.ledger.Sequence() < targetSeq {
		e.Close()
	}
}

// AdvanceTime moves the clock forward without closing a ledger. The
// next submission is judged at the later time.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// Submit applies one transaction to the current open ledger. A missing
// sequence is filled from the sender's account root and a missing fee
// from the reference fee, the way a submitting client would.
func (e *TestEnv) Submit(txn tx.Transaction) TxResult {
	e.t.Helper()

	common := txn.GetCommon()
	if common.Sequence == nil {
		seq, ok := e.sequenceFor(common.Account)
		if ok {
			common.Sequence = &seq
		}
	}
	if common.Fee == "" {
		common.Fee = strconv.FormatUint(e.fees.Base.Units(), 10)
	}

	engine := tx.NewEngine(e.ledger, tx.EngineConfig{
		Fees:                      e.fees,
		LedgerSequence:            e.ledger.Sequence(),
		ParentCloseTime:           networkTime(e.clock.Now()),
		SkipSignatureVerification: true,
		Standalone:                true,
	})

	applied := engine.Apply(txn)
	if applied.Applied {
		e.feesBurned += applied.Fee
	}

	result := TxResult{
		Code:    applied.Result.String(),
		Success: applied.Result.IsSuccess(),
		Message: applied.Message,
	}
	if applied.Metadata != nil {
		result.Delivered = applied.Metadata.DeliveredAmount
	}
	return result
}

// FeesBurned returns the total fees applied transactions have destroyed
// since the environment was created.
func (e *TestEnv) FeesBurned() amount.Amount {
	return e.feesBurned
}

// sequenceFor reads the next sequence of the addressed account. A
// missing account reports false and leaves the engine to reject the
// submission.
func (e *TestEnv) sequenceFor(address string) (uint32, bool) {
	e.t.Helper()
	id, ok := e.decode(address)
	if !ok {
		return 0, false
	}
	data, err := e.ledger.Read(keylet.Account(id))
	if err != nil {
		return 0, false
	}
	acct, err := record.ParseAccountRoot(data)
	if err != nil {
		return 0, false
	}
	return acct.Sequence, true
}

func (e *TestEnv) decode(address string) ([20]byte, bool) {
	_, idBytes, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		return [20]byte{}, false
	}
	var id [20]byte
	copy(id[:], idBytes)
	return id, true
}

// Seq returns the next sequence number of an account.
func (e *TestEnv) Seq(acc *Account) uint32 {
	e.t.Helper()
	return e.AccountInfo(acc).Sequence
}

// Exists reports whether the account has a ledger entry.
func (e *TestEnv) Exists(acc *Account) bool {
	e.t.Helper()
	ok, err := e.ledger.Exists(keylet.Account(acc.ID))
	if err != nil {
		e.t.Fatalf("probe account %s: %v", acc.Name, err)
	}
	return ok
}

// AccountInfo returns the account's ledger entry.
func (e *TestEnv) AccountInfo(acc *Account) *record.AccountRoot {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Account(acc.ID))
	if err != nil {
		e.t.Fatalf("read account %s: %v", acc.Name, err)
	}
	root, err := record.ParseAccountRoot(data)
	if err != nil {
		e.t.Fatalf("parse account %s: %v", acc.Name, err)
	}
	return root
}

// Balance returns the native balance of an account. A missing account
// has balance zero.
func (e *TestEnv) Balance(acc *Account) amount.Amount {
	e.t.Helper()
	if !e.Exists(acc) {
		return 0
	}
	return e.AccountInfo(acc).Balance
}

// OwnerCount returns the number of ledger entries the account owns.
func (e *TestEnv) OwnerCount(acc *Account) uint32 {
	e.t.Helper()
	return e.AccountInfo(acc).OwnerCount
}

// AssetID derives the registry key an issuer's asset lives under,
// as an upper-case hex string.
func (e *TestEnv) AssetID(issuer *Account, code string) string {
	e.t.Helper()
	codeBytes, err := record.CodeFromString(code)
	if err != nil {
		e.t.Fatalf("asset code %q: %v", code, err)
	}
	k := keylet.Asset(issuer.ID, codeBytes)
	return strings.ToUpper(hex.EncodeToString(k.Key[:]))
}

// CreateAsset registers an asset under the issuer and returns its key.
func (e *TestEnv) CreateAsset(issuer *Account, code string, precision uint8) string {
	e.t.Helper()
	result := e.Submit(tx.NewAssetCreate(issuer.Address, code, precision))
	if !result.Success {
		e.t.Fatalf("create asset %s/%s: %s (%s)", issuer.Name, code, result.Code, result.Message)
	}
	return e.AssetID(issuer, code)
}

// Mint issues token units to the holder. The issuer must own the asset.
func (e *TestEnv) Mint(issuer *Account, asset string, holder *Account, amt amount.Amount) {
	e.t.Helper()
	result := e.Submit(tx.NewAssetIssue(issuer.Address, asset, holder.Address, amt.String()))
	if !result.Success {
		e.t.Fatalf("mint %v of %s to %s: %s (%s)", amt, asset, holder.Name, result.Code, result.Message)
	}
}

// CreateToken registers an asset and mints the given opening balances.
// Returns the asset key.
func (e *TestEnv) CreateToken(issuer *Account, code string, precision uint8, balances map[*Account]amount.Amount) string {
	e.t.Helper()
	asset := e.CreateAsset(issuer, code, precision)
	for holder, amt := range balances {
		e.Mint(issuer, asset, holder, amt)
	}
	return asset
}

// HoldingExists reports whether the account has a holding entry for the
// asset.
func (e *TestEnv) HoldingExists(acc *Account, asset string) bool {
	e.t.Helper()
	key, ok := e.parseKey(asset)
	if !ok {
		e.t.Fatalf("bad asset key %q", asset)
	}
	exists, err := e.ledger.Exists(keylet.Holding(acc.ID, key))
	if err != nil {
		e.t.Fatalf("probe holding: %v", err)
	}
	return exists
}

// TokenBalance returns the account's balance of the asset. A missing
// holding has balance zero.
func (e *TestEnv) TokenBalance(acc *Account, asset string) amount.Amount {
	e.t.Helper()
	if !e.HoldingExists(acc, asset) {
		return 0
	}
	key, _ := e.parseKey(asset)
	data, err := e.ledger.Read(keylet.Holding(acc.ID, key))
	if err != nil {
		e.t.Fatalf("read holding: %v", err)
	}
	holding, err := record.ParseHolding(data)
	if err != nil {
		e.t.Fatalf("parse holding: %v", err)
	}
	return holding.Balance
}

// OfferExists reports whether an offer entry lives at the given key.
func (e *TestEnv) OfferExists(offerID string) bool {
	e.t.Helper()
	key, ok := e.parseKey(offerID)
	if !ok {
		e.t.Fatalf("bad offer id %q", offerID)
	}
	exists, err := e.ledger.Exists(keylet.Keylet{Type: record.TypeOffer, Key: key})
	if err != nil {
		e.t.Fatalf("probe offer: %v", err)
	}
	return exists
}

// OfferInfo returns the offer's ledger entry.
func (e *TestEnv) OfferInfo(offerID string) *record.Offer {
	e.t.Helper()
	key, ok := e.parseKey(offerID)
	if !ok {
		e.t.Fatalf("bad offer id %q", offerID)
	}
	data, err := e.ledger.Read(keylet.Keylet{Type: record.TypeOffer, Key: key})
	if err != nil {
		e.t.Fatalf("read offer %s: %v", offerID, err)
	}
	offer, err := record.ParseOffer(data)
	if err != nil {
		e.t.Fatalf("parse offer %s: %v", offerID, err)
	}
	return offer
}

// OfferStatus returns the lifecycle status of the offer entry.
func (e *TestEnv) OfferStatus(offerID string) record.Status {
	e.t.Helper()
	return e.OfferInfo(offerID).Status
}

func (e *TestEnv) parseKey(s string) ([32]byte, bool) {
	var key [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return key, false
	}
	copy(key[:], raw)
	return key, true
}

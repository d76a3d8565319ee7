package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb"
	"github.com/LeJamon/goswapd/internal/storage/ledgerstore"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	_ "github.com/LeJamon/goswapd/internal/storage/relationaldb/sqlite"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// startService builds and starts a standalone service over a manual
// clock. Extra options mutate the config before construction.
func startService(t *testing.T, opts ...func(*Config)) (*Service, *jtx.ManualClock) {
	t.Helper()

	clock := jtx.NewManualClock()
	cfg := Config{
		Standalone: true,
		Genesis:    genesis.DefaultConfig(),
		Clock:      clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	svc := New(cfg)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc, clock
}

// accept closes the open ledger after advancing the clock one close
// interval.
func accept(t *testing.T, svc *Service, clock *jtx.ManualClock) uint32 {
	t.Helper()
	clock.Advance(10 * time.Second)
	seq, err := svc.AcceptLedger(context.Background())
	if err != nil {
		t.Fatalf("accept ledger: %v", err)
	}
	return seq
}

// submit applies a transaction and requires it to succeed.
func submit(t *testing.T, svc *Service, txn tx.Transaction) *SubmitResult {
	t.Helper()
	res, err := svc.SubmitTransaction(txn)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Result.IsSuccess() {
		t.Fatalf("submit result = %s (%s), want tesSUCCESS", res.Result, res.Message)
	}
	return res
}

func TestServiceStart(t *testing.T) {
	svc, _ := startService(t)

	gen := svc.GenesisLedger()
	if gen == nil {
		t.Fatal("no genesis ledger after start")
	}
	if gen.Sequence() != genesis.GenesisLedgerSequence {
		t.Errorf("genesis sequence = %d, want %d", gen.Sequence(), genesis.GenesisLedgerSequence)
	}
	if !gen.Closed() {
		t.Error("genesis ledger not closed")
	}

	open := svc.OpenLedger()
	if open.Sequence() != gen.Sequence()+1 {
		t.Errorf("open sequence = %d, want %d", open.Sequence(), gen.Sequence()+1)
	}
	if svc.ValidatedLedger().Hash() != gen.Hash() {
		t.Error("validated ledger is not genesis")
	}

	info, err := svc.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.CompleteLedgers != "1" {
		t.Errorf("complete ledgers = %q, want %q", info.CompleteLedgers, "1")
	}
	if info.TotalSupply != genesis.InitialSupply {
		t.Errorf("total supply = %v, want %v", info.TotalSupply, genesis.InitialSupply)
	}
}

func TestStartTwice(t *testing.T) {
	svc, _ := startService(t)
	if err := svc.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second start error = %v, want ErrAlreadyStarted", err)
	}
}

func TestUseBeforeStart(t *testing.T) {
	svc := New(Config{Standalone: true, Genesis: genesis.DefaultConfig()})

	if _, err := svc.SubmitTransaction(tx.NewPayment(genesis.MasterAddress, jtx.NewAccount("alice").Address, "100")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("submit error = %v, want ErrNotStarted", err)
	}
	if _, err := svc.AcceptLedger(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("accept error = %v, want ErrNotStarted", err)
	}
	if _, err := svc.Info(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("info error = %v, want ErrNotStarted", err)
	}
}

func TestAcceptNotStandalone(t *testing.T) {
	clock := jtx.NewManualClock()
	svc := New(Config{
		Genesis: genesis.DefaultConfig(),
		Clock:   clock.Now,
	})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AcceptLedger(context.Background()); !errors.Is(err, ErrNotStandalone) {
		t.Fatalf("accept error = %v, want ErrNotStandalone", err)
	}
}

func TestSubmitPayment(t *testing.T) {
	svc, _ := startService(t)
	alice := jtx.NewAccount("alice")

	res := submit(t, svc, tx.NewPayment(genesis.MasterAddress, alice.Address, amount.SWP(100).String()))
	if !res.Applied {
		t.Fatal("payment not applied")
	}
	if res.TxHash == ([32]byte{}) {
		t.Error("applied payment has zero hash")
	}
	if res.Fee != amount.New(10) {
		t.Errorf("fee = %v, want 10", res.Fee)
	}

	// Visible in the open ledger, absent from the validated one.
	acct, err := svc.AccountInfo(context.Background(), alice.Address, "current")
	if err != nil {
		t.Fatalf("account info (current): %v", err)
	}
	if acct.Root.Balance != amount.SWP(100) {
		t.Errorf("balance = %v, want %v", acct.Root.Balance, amount.SWP(100))
	}
	if acct.Validated {
		t.Error("open ledger query reported validated")
	}

	if _, err := svc.AccountInfo(context.Background(), alice.Address, "validated"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("validated query error = %v, want ErrAccountNotFound", err)
	}
}

func TestSubmitFillsSequenceAndFee(t *testing.T) {
	svc, _ := startService(t)
	alice := jtx.NewAccount("alice")

	p := tx.NewPayment(genesis.MasterAddress, alice.Address, amount.SWP(50).String())
	if p.GetCommon().Sequence != nil {
		t.Fatal("builder should leave sequence unset")
	}
	res := submit(t, svc, p)
	if !res.Applied {
		t.Fatal("payment not applied")
	}
	if p.GetCommon().GetSequence() != 1 {
		t.Errorf("filled sequence = %d, want 1", p.GetCommon().GetSequence())
	}
	if p.GetCommon().Fee != "10" {
		t.Errorf("filled fee = %q, want %q", p.GetCommon().Fee, "10")
	}
}

func TestSubmitRejectedNotRecorded(t *testing.T) {
	svc, _ := startService(t)
	alice := jtx.NewAccount("alice")

	// Unfunded sender fails preclaim; nothing should land in the open
	// ledger.
	res, err := svc.SubmitTransaction(tx.NewPayment(alice.Address, genesis.MasterAddress, "100"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Applied {
		t.Fatal("unfunded payment applied")
	}
	if res.Result != tx.TerNO_ACCOUNT {
		t.Errorf("result = %s, want terNO_ACCOUNT", res.Result)
	}
	if svc.OpenLedger().TxCount() != 0 {
		t.Errorf("open ledger holds %d txs, want 0", svc.OpenLedger().TxCount())
	}
}

func TestAcceptLedger(t *testing.T) {
	svc, clock := startService(t)
	alice := jtx.NewAccount("alice")

	res := submit(t, svc, tx.NewPayment(genesis.MasterAddress, alice.Address, amount.SWP(100).String()))

	seq := accept(t, svc, clock)
	if seq != 2 {
		t.Fatalf("closed sequence = %d, want 2", seq)
	}
	if svc.OpenLedger().Sequence() != 3 {
		t.Errorf("open sequence = %d, want 3", svc.OpenLedger().Sequence())
	}
	if !svc.ValidatedLedger().Header().Validated {
		t.Error("closed ledger not validated")
	}

	acct, err := svc.AccountInfo(context.Background(), alice.Address, "validated")
	if err != nil {
		t.Fatalf("account info (validated): %v", err)
	}
	if acct.Root.Balance != amount.SWP(100) {
		t.Errorf("validated balance = %v, want %v", acct.Root.Balance, amount.SWP(100))
	}

	lookup, err := svc.Tx(context.Background(), res.TxHash)
	if err != nil {
		t.Fatalf("tx lookup: %v", err)
	}
	if !lookup.Validated {
		t.Error("tx in closed ledger reported unvalidated")
	}
	if lookup.LedgerSequence != 2 {
		t.Errorf("tx ledger = %d, want 2", lookup.LedgerSequence)
	}
	if len(lookup.Blob) == 0 || len(lookup.MetaJSON) == 0 {
		t.Error("tx lookup missing blob or metadata")
	}

	// The burned fee left the supply.
	info, err := svc.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if want := genesis.InitialSupply - amount.New(10); info.TotalSupply != want {
		t.Errorf("supply after close = %v, want %v", info.TotalSupply, want)
	}
}

func TestAcceptMultipleLedgers(t *testing.T) {
	svc, clock := startService(t)

	for i := 0; i < 5; i++ {
		accept(t, svc, clock)
	}
	if svc.OpenLedger().Sequence() != 7 {
		t.Errorf("open sequence = %d, want 7", svc.OpenLedger().Sequence())
	}

	info, err := svc.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.CompleteLedgers != "1-6" {
		t.Errorf("complete ledgers = %q, want %q", info.CompleteLedgers, "1-6")
	}

	// Close times are strictly increasing.
	var prev uint32
	for seq := uint32(1); seq <= 6; seq++ {
		l, err := svc.LedgerBySeq(context.Background(), seq)
		if err != nil {
			t.Fatalf("ledger %d: %v", seq, err)
		}
		ct := l.Header().CloseTime
		if ct <= prev {
			t.Errorf("ledger %d close time %d not after %d", seq, ct, prev)
		}
		prev = ct
	}
}

func TestLedgerLookup(t *testing.T) {
	svc, clock := startService(t)
	accept(t, svc, clock)

	gen := svc.GenesisLedger()
	l2, err := svc.LedgerBySeq(context.Background(), 2)
	if err != nil {
		t.Fatalf("ledger 2: %v", err)
	}
	if l2.Header().ParentHash != gen.Hash() {
		t.Error("ledger 2 does not chain to genesis")
	}

	byHash, err := svc.LedgerByHash(context.Background(), gen.Hash())
	if err != nil {
		t.Fatalf("ledger by hash: %v", err)
	}
	if byHash.Sequence() != 1 {
		t.Errorf("ledger by hash sequence = %d, want 1", byHash.Sequence())
	}

	if _, err := svc.LedgerBySeq(context.Background(), 999); !errors.Is(err, ErrLedgerNotFound) {
		t.Errorf("missing ledger error = %v, want ErrLedgerNotFound", err)
	}

	// Specifier resolution covers shortcuts, sequences and hashes.
	genHash := gen.Hash()
	hashSpec := strings.ToUpper(hex.EncodeToString(genHash[:]))
	for _, spec := range []string{"current", "closed", "validated", "2", hashSpec} {
		if _, err := svc.ResolveLedger(context.Background(), spec); err != nil {
			t.Errorf("resolve %q: %v", spec, err)
		}
	}
	if _, err := svc.ResolveLedger(context.Background(), "nonsense"); !errors.Is(err, ErrInvalidLedgerSpec) {
		t.Errorf("bad spec error = %v, want ErrInvalidLedgerSpec", err)
	}
}

func TestResumeFromStore(t *testing.T) {
	ctx := context.Background()
	store, err := ledgerstore.New(ctx, keyValueDb.NewMemory(), ledgerstore.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	withStore := func(c *Config) { c.Store = store }

	svc1, clock1 := startService(t, withStore)
	alice := jtx.NewAccount("alice")
	submit(t, svc1, tx.NewPayment(genesis.MasterAddress, alice.Address, amount.SWP(250).String()))
	accept(t, svc1, clock1)
	accept(t, svc1, clock1)
	accept(t, svc1, clock1)
	tipSeq := svc1.ValidatedLedger().Sequence()
	tipHash := svc1.ValidatedLedger().Hash()

	svc2, clock2 := startService(t, withStore)
	if got := svc2.ValidatedLedger().Sequence(); got != tipSeq {
		t.Fatalf("resumed validated sequence = %d, want %d", got, tipSeq)
	}
	if svc2.ValidatedLedger().Hash() != tipHash {
		t.Fatal("resumed tip hash differs")
	}
	if svc2.OpenLedger().Sequence() != tipSeq+1 {
		t.Errorf("resumed open sequence = %d, want %d", svc2.OpenLedger().Sequence(), tipSeq+1)
	}

	info, err := svc2.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.CompleteLedgers != "1-4" {
		t.Errorf("resumed complete ledgers = %q, want %q", info.CompleteLedgers, "1-4")
	}

	acct, err := svc2.AccountInfo(ctx, alice.Address, "validated")
	if err != nil {
		t.Fatalf("account info after resume: %v", err)
	}
	if acct.Root.Balance != amount.SWP(250) {
		t.Errorf("resumed balance = %v, want %v", acct.Root.Balance, amount.SWP(250))
	}

	// The resumed node keeps closing where the first left off.
	if seq := accept(t, svc2, clock2); seq != tipSeq+1 {
		t.Errorf("next close sequence = %d, want %d", seq, tipSeq+1)
	}
}

func TestJournalQueries(t *testing.T) {
	ctx := context.Background()
	jcfg := relationaldb.NewConfig()
	jcfg.Path = ":memory:"
	journal, err := relationaldb.OpenJournal(ctx, jcfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close(ctx)

	svc, clock := startService(t, func(c *Config) { c.Journal = journal })
	alice := jtx.NewAccount("alice")
	res := submit(t, svc, tx.NewPayment(genesis.MasterAddress, alice.Address, amount.SWP(75).String()))
	accept(t, svc, clock)

	rows, err := svc.AccountTxs(ctx, relationaldb.AccountTxQuery{Account: genesis.MasterAddress})
	if err != nil {
		t.Fatalf("account txs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("journal rows = %d, want 1", len(rows))
	}
	if rows[0].TxType != "Payment" || rows[0].Result != "tesSUCCESS" {
		t.Errorf("journal row = %s/%s, want Payment/tesSUCCESS", rows[0].TxType, rows[0].Result)
	}
	if rows[0].Hash != relationaldb.Hash(res.TxHash) {
		t.Error("journal row hash mismatch")
	}

	jrow, err := journal.TxByHash(ctx, relationaldb.Hash(res.TxHash))
	if err != nil {
		t.Fatalf("journal tx by hash: %v", err)
	}
	if jrow.LedgerSeq != 2 {
		t.Errorf("journal ledger seq = %d, want 2", jrow.LedgerSeq)
	}
}

func TestCloseEvents(t *testing.T) {
	var (
		closedEvents []LedgerClosedEvent
		txEvents     []TransactionEvent
		offerEvents  []OfferEvent
	)

	clock := jtx.NewManualClock()
	svc := New(Config{
		Standalone: true,
		Genesis:    genesis.DefaultConfig(),
		Clock:      clock.Now,
	})
	svc.SetHooks(Hooks{
		OnLedgerClosed: func(ev LedgerClosedEvent) { closedEvents = append(closedEvents, ev) },
		OnTransaction:  func(ev TransactionEvent) { txEvents = append(txEvents, ev) },
		OnOffer:        func(ev OfferEvent) { offerEvents = append(offerEvents, ev) },
	})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	for _, acc := range []*jtx.Account{issuer, alice, bob} {
		submit(t, svc, tx.NewPayment(genesis.MasterAddress, acc.Address, amount.SWP(1000).String()))
	}
	submit(t, svc, tx.NewAssetCreate(issuer.Address, "GOLD", 2))
	gold := assetID(t, issuer, "GOLD")
	submit(t, svc, tx.NewAssetIssue(issuer.Address, gold, bob.Address, "20"))
	accept(t, svc, clock)

	if len(closedEvents) != 1 {
		t.Fatalf("close events = %d, want 1", len(closedEvents))
	}
	if closedEvents[0].TxCount != 5 {
		t.Errorf("close event tx count = %d, want 5", closedEvents[0].TxCount)
	}
	if len(txEvents) != 5 {
		t.Fatalf("tx events = %d, want 5", len(txEvents))
	}
	if txEvents[0].TransactionType != "Payment" {
		t.Errorf("first tx event type = %q, want Payment", txEvents[0].TransactionType)
	}
	if len(offerEvents) != 0 {
		t.Fatalf("offer events before any offer = %d, want 0", len(offerEvents))
	}

	// An offer creation publishes an Active lifecycle event at close.
	create := tx.NewOfferCreate(alice.Address, "PublicBuy", "native", amount.SWP(5).String(), gold, "20")
	if err := create.DeriveID(); err != nil {
		t.Fatalf("derive offer id: %v", err)
	}
	submit(t, svc, create)
	accept(t, svc, clock)

	if len(offerEvents) != 1 {
		t.Fatalf("offer events after create = %d, want 1", len(offerEvents))
	}
	created := offerEvents[0]
	if created.Status != "Active" {
		t.Errorf("created offer status = %q, want Active", created.Status)
	}
	if created.Kind != "PublicBuy" {
		t.Errorf("created offer kind = %q, want PublicBuy", created.Kind)
	}
	if !strings.EqualFold(created.OfferID, create.OfferID) {
		t.Errorf("offer event id = %s, want %s", created.OfferID, create.OfferID)
	}
	if created.LedgerSequence != 3 {
		t.Errorf("offer event ledger = %d, want 3", created.LedgerSequence)
	}

	// Acceptance publishes the transition to Accepted.
	submit(t, svc, tx.NewOfferAccept(bob.Address, create.OfferID, alice.Address))
	accept(t, svc, clock)

	if len(offerEvents) != 2 {
		t.Fatalf("offer events after accept = %d, want 2", len(offerEvents))
	}
	if offerEvents[1].Status != "Accepted" {
		t.Errorf("accepted offer status = %q, want Accepted", offerEvents[1].Status)
	}
	if offerEvents[1].TxHash == ([32]byte{}) {
		t.Error("offer event missing tx hash")
	}
}

func TestAccountOffers(t *testing.T) {
	svc, clock := startService(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")

	for _, acc := range []*jtx.Account{issuer, alice} {
		submit(t, svc, tx.NewPayment(genesis.MasterAddress, acc.Address, amount.SWP(1000).String()))
	}
	submit(t, svc, tx.NewAssetCreate(issuer.Address, "GOLD", 2))
	gold := assetID(t, issuer, "GOLD")

	create := tx.NewOfferCreate(alice.Address, "PublicBuy", "native", amount.SWP(5).String(), gold, "20")
	if err := create.DeriveID(); err != nil {
		t.Fatalf("derive offer id: %v", err)
	}
	submit(t, svc, create)
	accept(t, svc, clock)

	result, err := svc.AccountOffers(context.Background(), alice.Address, "validated")
	if err != nil {
		t.Fatalf("account offers: %v", err)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("account offers = %d, want 1", len(result.Offers))
	}
	if !strings.EqualFold(result.Offers[0].OfferID, create.OfferID) {
		t.Errorf("offer id = %s, want %s", result.Offers[0].OfferID, create.OfferID)
	}
	if result.Offers[0].Offer.Status != record.StatusActive {
		t.Errorf("offer status = %v, want Active", result.Offers[0].Offer.Status)
	}

	other, err := svc.AccountOffers(context.Background(), issuer.Address, "validated")
	if err != nil {
		t.Fatalf("account offers (issuer): %v", err)
	}
	if len(other.Offers) != 0 {
		t.Errorf("issuer offers = %d, want 0", len(other.Offers))
	}
}

func TestOfferQuery(t *testing.T) {
	svc, clock := startService(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")

	for _, acc := range []*jtx.Account{issuer, alice} {
		submit(t, svc, tx.NewPayment(genesis.MasterAddress, acc.Address, amount.SWP(1000).String()))
	}
	submit(t, svc, tx.NewAssetCreate(issuer.Address, "GOLD", 2))
	gold := assetID(t, issuer, "GOLD")

	submit(t, svc, tx.NewAssetIssue(issuer.Address, gold, alice.Address, "10"))

	create := tx.NewOfferCreate(alice.Address, "PublicSell", gold, "10", "native", amount.SWP(3).String())
	if err := create.DeriveID(); err != nil {
		t.Fatalf("derive offer id: %v", err)
	}
	submit(t, svc, create)
	accept(t, svc, clock)

	got, err := svc.Offer(context.Background(), create.OfferID, "validated")
	if err != nil {
		t.Fatalf("offer query: %v", err)
	}
	if got.Offer.Kind != record.KindPublicSell {
		t.Errorf("offer kind = %v, want PublicSell", got.Offer.Kind)
	}
	if !got.Validated {
		t.Error("validated offer query reported unvalidated")
	}

	if _, err := svc.Offer(context.Background(), strings.Repeat("AB", 32), "validated"); !errors.Is(err, ErrOfferNotFound) {
		t.Errorf("missing offer error = %v, want ErrOfferNotFound", err)
	}
	if _, err := svc.Offer(context.Background(), "zz", "validated"); !errors.Is(err, ErrInvalidOfferID) {
		t.Errorf("bad offer id error = %v, want ErrInvalidOfferID", err)
	}
}

// assetID derives the registry key an issuer's asset lives under.
func assetID(t *testing.T, issuer *jtx.Account, code string) string {
	t.Helper()
	codeBytes, err := record.CodeFromString(code)
	if err != nil {
		t.Fatalf("asset code %q: %v", code, err)
	}
	k := keylet.Asset(issuer.ID, codeBytes)
	return strings.ToUpper(hex.EncodeToString(k.Key[:]))
}

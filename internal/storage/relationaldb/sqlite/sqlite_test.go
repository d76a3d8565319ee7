package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

func openTestJournal(t *testing.T) relationaldb.Journal {
	t.Helper()

	cfg := relationaldb.NewConfig()
	cfg.Path = ":memory:"

	j, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close(context.Background()) })
	return j
}

func hashOf(b byte) relationaldb.Hash {
	var h relationaldb.Hash
	h[0] = b
	return h
}

func ledgerFixture(seq uint32) *relationaldb.LedgerInfo {
	return &relationaldb.LedgerInfo{
		Hash:            hashOf(0x10 + byte(seq)),
		Sequence:        relationaldb.LedgerIndex(seq),
		ParentHash:      hashOf(0x10 + byte(seq) - 1),
		AccountHash:     hashOf(0xAA),
		TxHash:          hashOf(0xBB),
		TotalSupply:     1_000_000_000,
		CloseTime:       time.Unix(946684800+int64(seq)*10, 0).UTC(),
		ParentCloseTime: time.Unix(946684800+int64(seq-1)*10, 0).UTC(),
		CloseTimeRes:    10,
	}
}

func txFixture(hash byte, seq, tseq uint32, account string) relationaldb.TxInfo {
	return relationaldb.TxInfo{
		Hash:      hashOf(hash),
		LedgerSeq: relationaldb.LedgerIndex(seq),
		TxnSeq:    tseq,
		Account:   account,
		TxType:    "Payment",
		Result:    "tesSUCCESS",
		RawTxn:    []byte{0x01, hash},
		TxnMeta:   []byte{0x02, hash},
	}
}

// seedJournal writes three ledgers: alice transacts in all three, bob
// only in the second.
func seedJournal(t *testing.T, j relationaldb.Journal) {
	t.Helper()
	ctx := context.Background()

	saves := []struct {
		info *relationaldb.LedgerInfo
		txs  []relationaldb.TxInfo
	}{
		{ledgerFixture(1), []relationaldb.TxInfo{txFixture(0x01, 1, 0, "alice")}},
		{ledgerFixture(2), []relationaldb.TxInfo{
			txFixture(0x02, 2, 0, "bob"),
			txFixture(0x03, 2, 1, "alice"),
		}},
		{ledgerFixture(3), []relationaldb.TxInfo{txFixture(0x04, 3, 0, "alice")}},
	}
	for _, s := range saves {
		if err := j.SaveLedger(ctx, s.info, s.txs); err != nil {
			t.Fatalf("SaveLedger %d failed: %v", s.info.Sequence, err)
		}
	}
}

func TestJournalLedgers(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	seedJournal(t, j)

	got, err := j.LedgerBySeq(ctx, 2)
	if err != nil {
		t.Fatalf("LedgerBySeq failed: %v", err)
	}
	want := ledgerFixture(2)
	if got.Hash != want.Hash || got.ParentHash != want.ParentHash {
		t.Errorf("Hash mismatch: got %s", got.Hash)
	}
	if got.TotalSupply != want.TotalSupply {
		t.Errorf("Supply mismatch: got %d", got.TotalSupply)
	}
	if !got.CloseTime.Equal(want.CloseTime) {
		t.Errorf("CloseTime mismatch: got %v, want %v", got.CloseTime, want.CloseTime)
	}
	if got.CloseTimeRes != want.CloseTimeRes {
		t.Errorf("CloseTimeRes mismatch: got %d", got.CloseTimeRes)
	}

	byHash, err := j.LedgerByHash(ctx, want.Hash)
	if err != nil {
		t.Fatalf("LedgerByHash failed: %v", err)
	}
	if byHash.Sequence != 2 {
		t.Errorf("Wrong ledger by hash: got seq %d", byHash.Sequence)
	}

	newest, err := j.NewestLedger(ctx)
	if err != nil {
		t.Fatalf("NewestLedger failed: %v", err)
	}
	if newest.Sequence != 3 {
		t.Errorf("Wrong newest: got seq %d", newest.Sequence)
	}

	rng, err := j.SeqRange(ctx)
	if err != nil {
		t.Fatalf("SeqRange failed: %v", err)
	}
	if rng.Min != 1 || rng.Max != 3 {
		t.Errorf("Wrong range: got [%d, %d]", rng.Min, rng.Max)
	}

	if _, err := j.LedgerBySeq(ctx, 99); !errors.Is(err, relationaldb.ErrNotFound) {
		t.Errorf("Missing seq: got %v", err)
	}
	if _, err := j.LedgerByHash(ctx, hashOf(0xEE)); !errors.Is(err, relationaldb.ErrNotFound) {
		t.Errorf("Missing hash: got %v", err)
	}
}

func TestJournalTxs(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	seedJournal(t, j)

	got, err := j.TxByHash(ctx, hashOf(0x03))
	if err != nil {
		t.Fatalf("TxByHash failed: %v", err)
	}
	if got.Account != "alice" || got.LedgerSeq != 2 || got.TxnSeq != 1 {
		t.Errorf("Wrong tx: %+v", got)
	}
	if got.TxType != "Payment" || got.Result != "tesSUCCESS" {
		t.Errorf("Wrong tx metadata: %+v", got)
	}
	if len(got.RawTxn) == 0 || len(got.TxnMeta) == 0 {
		t.Error("Raw payloads not journaled")
	}

	if _, err := j.TxByHash(ctx, hashOf(0x77)); !errors.Is(err, relationaldb.ErrNotFound) {
		t.Errorf("Missing tx: got %v", err)
	}

	count, err := j.TxCount(ctx)
	if err != nil {
		t.Fatalf("TxCount failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Wrong tx count: got %d", count)
	}
}

func TestJournalAccountTxs(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	seedJournal(t, j)

	// Newest first by default.
	txs, err := j.AccountTxs(ctx, relationaldb.AccountTxQuery{Account: "alice"})
	if err != nil {
		t.Fatalf("AccountTxs failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Wrong count for alice: got %d", len(txs))
	}
	if txs[0].LedgerSeq != 3 || txs[2].LedgerSeq != 1 {
		t.Errorf("Wrong order: %d, %d, %d", txs[0].LedgerSeq, txs[1].LedgerSeq, txs[2].LedgerSeq)
	}

	oldest, err := j.AccountTxs(ctx, relationaldb.AccountTxQuery{Account: "alice", OldestFirst: true})
	if err != nil {
		t.Fatalf("AccountTxs failed: %v", err)
	}
	if oldest[0].LedgerSeq != 1 {
		t.Errorf("OldestFirst ignored: first is seq %d", oldest[0].LedgerSeq)
	}

	// Ledger window.
	windowed, err := j.AccountTxs(ctx, relationaldb.AccountTxQuery{
		Account: "alice", MinLedger: 2, MaxLedger: 2,
	})
	if err != nil {
		t.Fatalf("AccountTxs failed: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Hash != hashOf(0x03) {
		t.Errorf("Wrong windowed result: %+v", windowed)
	}

	limited, err := j.AccountTxs(ctx, relationaldb.AccountTxQuery{Account: "alice", Limit: 2})
	if err != nil {
		t.Fatalf("AccountTxs failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Limit ignored: got %d", len(limited))
	}

	none, err := j.AccountTxs(ctx, relationaldb.AccountTxQuery{Account: "carol"})
	if err != nil {
		t.Fatalf("AccountTxs failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Unexpected txs for carol: %+v", none)
	}
}

func TestJournalReplaceLedger(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	seedJournal(t, j)

	// Re-journal sequence 2 with a different transaction set.
	replacement := ledgerFixture(2)
	replacement.Hash = hashOf(0x99)
	if err := j.SaveLedger(ctx, replacement, []relationaldb.TxInfo{
		txFixture(0x05, 2, 0, "alice"),
	}); err != nil {
		t.Fatalf("SaveLedger failed: %v", err)
	}

	got, err := j.LedgerBySeq(ctx, 2)
	if err != nil {
		t.Fatalf("LedgerBySeq failed: %v", err)
	}
	if got.Hash != hashOf(0x99) {
		t.Errorf("Ledger row not replaced: got %s", got.Hash)
	}

	if _, err := j.TxByHash(ctx, hashOf(0x02)); !errors.Is(err, relationaldb.ErrNotFound) {
		t.Errorf("Old tx row survived: got %v", err)
	}
	if _, err := j.TxByHash(ctx, hashOf(0x05)); err != nil {
		t.Errorf("New tx row missing: %v", err)
	}

	count, err := j.TxCount(ctx)
	if err != nil {
		t.Fatalf("TxCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Wrong tx count after replace: got %d", count)
	}
}

func TestJournalDeleteBefore(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	seedJournal(t, j)

	if err := j.DeleteBefore(ctx, 3); err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}

	rng, err := j.SeqRange(ctx)
	if err != nil {
		t.Fatalf("SeqRange failed: %v", err)
	}
	if rng.Min != 3 || rng.Max != 3 {
		t.Errorf("Wrong range after prune: [%d, %d]", rng.Min, rng.Max)
	}

	count, err := j.TxCount(ctx)
	if err != nil {
		t.Fatalf("TxCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Wrong tx count after prune: got %d", count)
	}

	if _, err := j.TxByHash(ctx, hashOf(0x01)); !errors.Is(err, relationaldb.ErrNotFound) {
		t.Errorf("Pruned tx still present: got %v", err)
	}
}

func TestJournalClosed(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := j.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := j.Ping(ctx); !errors.Is(err, relationaldb.ErrJournalClosed) {
		t.Errorf("Ping after close: got %v", err)
	}
	if _, err := j.NewestLedger(ctx); !errors.Is(err, relationaldb.ErrJournalClosed) {
		t.Errorf("Query after close: got %v", err)
	}
	// Closing twice is fine.
	if err := j.Close(ctx); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

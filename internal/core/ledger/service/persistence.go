package service

import (
	"context"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

// persistLocked archives a closed ledger and journals it with its
// applied transactions. Either backend may be absent.
func (s *Service) persistLocked(ctx context.Context, l *ledger.Ledger, applied []appliedTx) error {
	if s.cfg.Store != nil {
		if err := s.cfg.Store.SaveLedger(ctx, l); err != nil {
			return fmt.Errorf("archive ledger %d: %w", l.Sequence(), err)
		}
	}
	if s.cfg.Journal != nil {
		h := l.Header()
		if err := s.cfg.Journal.SaveLedger(ctx, journalInfo(h), journalRows(h, applied)); err != nil {
			return fmt.Errorf("journal ledger %d: %w", l.Sequence(), err)
		}
	}
	return nil
}

// journalInfo builds the journal row for a sealed header.
func journalInfo(h header.Header) *relationaldb.LedgerInfo {
	return &relationaldb.LedgerInfo{
		Hash:            relationaldb.Hash(h.Hash),
		Sequence:        relationaldb.LedgerIndex(h.Sequence),
		ParentHash:      relationaldb.Hash(h.ParentHash),
		AccountHash:     relationaldb.Hash(h.AccountHash),
		TxHash:          relationaldb.Hash(h.TxHash),
		TotalSupply:     h.TotalSupply.Units(),
		CloseTime:       header.FromNetworkTime(h.CloseTime),
		ParentCloseTime: header.FromNetworkTime(h.ParentCloseTime),
		CloseTimeRes:    int32(h.CloseTimeResolution),
	}
}

// journalRows builds the transaction rows for a sealed ledger, in
// application order.
func journalRows(h header.Header, applied []appliedTx) []relationaldb.TxInfo {
	if len(applied) == 0 {
		return nil
	}
	rows := make([]relationaldb.TxInfo, 0, len(applied))
	for i, p := range applied {
		rows = append(rows, relationaldb.TxInfo{
			Hash:      relationaldb.Hash(p.hash),
			LedgerSeq: relationaldb.LedgerIndex(h.Sequence),
			TxnSeq:    uint32(i),
			Account:   p.account,
			TxType:    p.txType,
			Result:    p.result.String(),
			RawTxn:    p.blob,
			TxnMeta:   p.metaJSON,
		})
	}
	return rows
}

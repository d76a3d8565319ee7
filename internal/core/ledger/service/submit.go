package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// SubmitResult reports how the engine judged one submission. A non-nil
// result with Applied false still names the result code; the error
// return is reserved for node failures.
type SubmitResult struct {
	// Result is the engine result code.
	Result tx.Result

	// Applied reports whether the transaction made it into the open
	// ledger. Success and tec results apply.
	Applied bool

	// TxHash identifies the transaction; zero unless applied.
	TxHash [32]byte

	// Fee is the fee charged in base units.
	Fee amount.Amount

	// Metadata describes the ledger changes. Nil for results judged
	// before application.
	Metadata *tx.Metadata

	// Message is the human-readable result description.
	Message string

	// OpenLedger is the sequence of the ledger the submission was
	// judged against.
	OpenLedger uint32

	// ValidatedLedger is the sequence of the validated tip at
	// submission time.
	ValidatedLedger uint32
}

// SubmitTransaction applies one transaction to the open ledger. A
// missing sequence is filled from the sender's account root and a
// missing fee from the reference fee, the way a submitting client
// would. Applied transactions are recorded in the open ledger and
// journaled when it closes.
func (s *Service) SubmitTransaction(txn tx.Transaction) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	common := txn.GetCommon()
	if common.Sequence == nil {
		if seq, ok := s.accountSequenceLocked(common.Account); ok {
			common.Sequence = &seq
		}
	}
	if common.Fee == "" {
		common.Fee = strconv.FormatUint(s.open.Fees().Base.Units(), 10)
	}

	engine := tx.NewEngine(s.open, tx.EngineConfig{
		Fees:                      s.open.Fees(),
		LedgerSequence:            s.open.Sequence(),
		ParentCloseTime:           s.closed.Header().CloseTime,
		NetworkID:                 s.cfg.NetworkID,
		SkipSignatureVerification: !s.cfg.VerifySignatures,
		Standalone:                s.cfg.Standalone,
	})
	applied := engine.Apply(txn)

	result := &SubmitResult{
		Result:          applied.Result,
		Applied:         applied.Applied,
		Fee:             applied.Fee,
		Metadata:        applied.Metadata,
		Message:         applied.Message,
		OpenLedger:      s.open.Sequence(),
		ValidatedLedger: s.validated.Sequence(),
	}
	if !applied.Applied {
		return result, nil
	}

	blob, err := tx.Serialize(txn)
	if err != nil {
		return nil, fmt.Errorf("serialize applied transaction: %w", err)
	}
	hash := tx.HashFromBlob(blob)
	result.TxHash = hash

	applied.Metadata.TransactionIndex = uint32(s.open.TxCount())
	metaJSON, err := json.Marshal(applied.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode transaction metadata: %w", err)
	}
	txJSON, err := tx.ToJSON(txn)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	if err := s.open.RecordTx(hash, blob, metaJSON); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	s.txSeq[hash] = s.open.Sequence()

	s.pending = append(s.pending, appliedTx{
		hash:     hash,
		blob:     blob,
		txJSON:   txJSON,
		metaJSON: metaJSON,
		account:  common.Account,
		txType:   common.TransactionType,
		result:   applied.Result,
		offers:   offerEventsFromMetadata(applied.Metadata, hash),
	})

	s.log.Debugw("tx_applied",
		"hash", fmt.Sprintf("%x", hash[:8]),
		"type", common.TransactionType,
		"result", applied.Result.String(),
		"ledger", s.open.Sequence(),
	)
	return result, nil
}

// accountSequenceLocked reads the next sequence of the addressed
// account from the open ledger. A missing or undecodable account
// reports false and leaves the engine to reject the submission.
func (s *Service) accountSequenceLocked(address string) (uint32, bool) {
	id, err := decodeAccountID(address)
	if err != nil {
		return 0, false
	}

	data, err := s.open.Read(keylet.Account(id))
	if err != nil {
		return 0, false
	}
	root, err := record.ParseAccountRoot(data)
	if err != nil {
		return 0, false
	}
	return root.Sequence, true
}

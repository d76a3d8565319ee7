package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// Stream names clients can subscribe to over the WebSocket surface.
const (
	StreamLedger       = "ledger"
	StreamTransactions = "transactions"
	StreamOffers       = "offers"
)

// knownStream reports whether name is a subscribable stream.
func knownStream(name string) bool {
	switch name {
	case StreamLedger, StreamTransactions, StreamOffers:
		return true
	}
	return false
}

// LedgerClosedMessage announces one sealed ledger on the ledger
// stream.
type LedgerClosedMessage struct {
	Type            string `json:"type"`
	LedgerIndex     uint32 `json:"ledger_index"`
	LedgerHash      string `json:"ledger_hash"`
	LedgerTime      uint32 `json:"ledger_time"`
	TxnCount        int    `json:"txn_count"`
	TotalSupply     string `json:"total_supply"`
	CompleteLedgers string `json:"complete_ledgers"`
	Validated       bool   `json:"validated"`
}

func NewLedgerClosedMessage(ev service.LedgerClosedEvent) *LedgerClosedMessage {
	return &LedgerClosedMessage{
		Type:            "ledgerClosed",
		LedgerIndex:     ev.Sequence,
		LedgerHash:      hashString(ev.Hash),
		LedgerTime:      ev.CloseTime,
		TxnCount:        ev.TxCount,
		TotalSupply:     ev.TotalSupply.String(),
		CompleteLedgers: ev.CompleteLedgers,
		Validated:       true,
	}
}

// TransactionMessage announces one applied transaction on the
// transactions stream, with the flattened transaction and its
// metadata inline.
type TransactionMessage struct {
	Type             string          `json:"type"`
	Hash             string          `json:"hash"`
	EngineResult     string          `json:"engine_result"`
	EngineResultCode int             `json:"engine_result_code"`
	Account          string          `json:"account"`
	TransactionType  string          `json:"transaction_type"`
	LedgerIndex      uint32          `json:"ledger_index"`
	LedgerHash       string          `json:"ledger_hash"`
	CloseTime        uint32          `json:"close_time"`
	Transaction      json.RawMessage `json:"transaction"`
	Meta             json.RawMessage `json:"meta,omitempty"`
	Validated        bool            `json:"validated"`
}

func NewTransactionMessage(ev service.TransactionEvent) *TransactionMessage {
	return &TransactionMessage{
		Type:             "transaction",
		Hash:             hashString(ev.Hash),
		EngineResult:     ev.Result.String(),
		EngineResultCode: int(ev.Result),
		Account:          ev.Account,
		TransactionType:  ev.TransactionType,
		LedgerIndex:      ev.LedgerSequence,
		LedgerHash:       hashString(ev.LedgerHash),
		CloseTime:        ev.CloseTime,
		Transaction:      ev.TxJSON,
		Meta:             ev.MetaJSON,
		Validated:        true,
	}
}

// OfferMessage announces one offer lifecycle transition on the offers
// stream: a created entry, or an entry whose status changed.
type OfferMessage struct {
	Type        string `json:"type"`
	OfferID     string `json:"offer_id"`
	Status      string `json:"status"`
	Kind        string `json:"kind"`
	Maker       string `json:"maker"`
	Taker       string `json:"taker,omitempty"`
	TxHash      string `json:"tx_hash"`
	LedgerIndex uint32 `json:"ledger_index"`
	LedgerHash  string `json:"ledger_hash"`
	CloseTime   uint32 `json:"close_time"`
}

func NewOfferMessage(ev service.OfferEvent) *OfferMessage {
	return &OfferMessage{
		Type:        "offer",
		OfferID:     ev.OfferID,
		Status:      ev.Status,
		Kind:        ev.Kind,
		Maker:       ev.Maker,
		Taker:       ev.Taker,
		TxHash:      hashString(ev.TxHash),
		LedgerIndex: ev.LedgerSequence,
		LedgerHash:  hashString(ev.LedgerHash),
		CloseTime:   ev.CloseTime,
	}
}

// hashString renders a 32-byte hash the way responses carry hashes.
func hashString(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// blobString renders a wire blob as upper-case hex.
func blobString(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

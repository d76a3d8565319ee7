package service

import (
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// Hooks receives notifications as ledgers close. They give the RPC
// layer a way to stream events without the service depending on any
// transport package. All hooks are optional and run synchronously on
// the closing goroutine, after the next open ledger is in place.
type Hooks struct {
	// OnLedgerClosed fires once per close.
	OnLedgerClosed func(LedgerClosedEvent)

	// OnTransaction fires for every transaction in the closed ledger,
	// in application order.
	OnTransaction func(TransactionEvent)

	// OnOffer fires for every offer created or moved to a new
	// lifecycle status by a transaction in the closed ledger.
	OnOffer func(OfferEvent)
}

// LedgerClosedEvent describes one sealed ledger.
type LedgerClosedEvent struct {
	Sequence        uint32
	Hash            [32]byte
	CloseTime       uint32
	TxCount         int
	TotalSupply     amount.Amount
	CompleteLedgers string
}

// TransactionEvent describes one transaction that made it into a
// closed ledger. TxJSON and MetaJSON carry the flattened transaction
// and its metadata, ready for stream payloads.
type TransactionEvent struct {
	Hash            [32]byte
	Result          tx.Result
	Account         string
	TransactionType string
	LedgerSequence  uint32
	LedgerHash      [32]byte
	CloseTime       uint32
	TxJSON          []byte
	MetaJSON        []byte
}

// OfferEvent describes an offer lifecycle transition: an offer was
// created, or its status changed. Maker and Taker are account IDs in
// upper-case hex; Taker is empty for public offers.
type OfferEvent struct {
	OfferID        string
	Status         string
	Kind           string
	Maker          string
	Taker          string
	TxHash         [32]byte
	LedgerSequence uint32
	LedgerHash     [32]byte
	CloseTime      uint32
}

// offerEventsFromMetadata extracts offer lifecycle transitions from
// transaction metadata. Created offer entries always produce an event;
// modified entries only when the status actually changed.
func offerEventsFromMetadata(meta *tx.Metadata, txHash [32]byte) []OfferEvent {
	if meta == nil {
		return nil
	}

	var events []OfferEvent
	for _, node := range meta.AffectedNodes {
		if node.LedgerEntryType != "Offer" {
			continue
		}

		var fields map[string]any
		switch node.NodeType {
		case "CreatedNode":
			fields = node.NewFields
		case "ModifiedNode":
			if _, changed := node.PreviousFields["Status"]; !changed {
				continue
			}
			fields = node.FinalFields
		default:
			continue
		}

		events = append(events, OfferEvent{
			OfferID: node.LedgerIndex,
			Status:  stringField(fields, "Status"),
			Kind:    stringField(fields, "Kind"),
			Maker:   stringField(fields, "Maker"),
			Taker:   stringField(fields, "Taker"),
			TxHash:  txHash,
		})
	}
	return events
}

func stringField(fields map[string]any, name string) string {
	if fields == nil {
		return ""
	}
	s, _ := fields[name].(string)
	return s
}

// MergeHooks combines hook sets into one that fans every event out to
// all of them, in argument order.
func MergeHooks(sets ...Hooks) Hooks {
	var merged Hooks
	for _, h := range sets {
		if h.OnLedgerClosed != nil {
			prev := merged.OnLedgerClosed
			next := h.OnLedgerClosed
			merged.OnLedgerClosed = func(ev LedgerClosedEvent) {
				if prev != nil {
					prev(ev)
				}
				next(ev)
			}
		}
		if h.OnTransaction != nil {
			prev := merged.OnTransaction
			next := h.OnTransaction
			merged.OnTransaction = func(ev TransactionEvent) {
				if prev != nil {
					prev(ev)
				}
				next(ev)
			}
		}
		if h.OnOffer != nil {
			prev := merged.OnOffer
			next := h.OnOffer
			merged.OnOffer = func(ev OfferEvent) {
				if prev != nil {
					prev(ev)
				}
				next(ev)
			}
		}
	}
	return merged
}

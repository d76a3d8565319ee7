package testing

import (
	"strings"

	"github.com/LeJamon/goswapd/internal/core/amount"
)

// TxResult is the outcome of one submitted transaction.
type TxResult struct {
	// Code is the engine result code name, e.g. "tesSUCCESS".
	Code string

	// Success is true only for tesSUCCESS. Claimed (tec) results apply
	// a fee but report failure.
	Success bool

	// Message is the human-readable result description.
	Message string

	// Delivered is the amount a payment or settled swap leg moved, when
	// the transaction reported one.
	Delivered *amount.Amount
}

// IsSuccess reports whether the transaction was applied in full.
func (r TxResult) IsSuccess() bool {
	return r.Code == "tesSUCCESS"
}

// IsClaimed reports whether the result charged a fee without applying
// the requested operation (tec codes).
func (r TxResult) IsClaimed() bool {
	return strings.HasPrefix(r.Code, "tec")
}

// IsRetry reports whether the transaction was held back and may succeed
// in a later ledger (ter codes).
func (r TxResult) IsRetry() bool {
	return strings.HasPrefix(r.Code, "ter")
}

// IsMalformed reports whether the transaction itself was rejected as
// invalid (tem codes).
func (r TxResult) IsMalformed() bool {
	return strings.HasPrefix(r.Code, "tem")
}

// IsFailed reports whether the transaction failed outright without a
// fee claim (tef or tel codes).
func (r TxResult) IsFailed() bool {
	return strings.HasPrefix(r.Code, "tef") || strings.HasPrefix(r.Code, "tel")
}

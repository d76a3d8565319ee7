package tx

import (
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// ApplyContext carries everything a transactor needs while applying a
// transaction. View is the state table the transactor writes through;
// on a tec result the engine discards the table, so failed transactors
// leave no trace beyond the fee.
type ApplyContext struct {
	// View is the ledger state the transaction reads and writes.
	View LedgerView

	// Account is the sender's account root, already charged the fee
	// and sequence bump.
	Account *record.AccountRoot

	// AccountID is the sender's 20-byte account ID.
	AccountID [20]byte

	// Config is the engine configuration the transaction runs under.
	Config EngineConfig

	// TxHash identifies the applying transaction.
	TxHash [32]byte

	// Metadata collects the transaction's effects.
	Metadata *Metadata

	// Engine is the engine applying the transaction.
	Engine *Engine
}

// Spendable returns what balance may be spent above the reserve floor.
func (ctx *ApplyContext) Spendable(balance amount.Amount) amount.Amount {
	return ctx.Config.Fees.Spendable(balance)
}

// EntryBaseline returns the native units an owned entry must carry.
func (ctx *ApplyContext) EntryBaseline() amount.Amount {
	return ctx.Config.Fees.EntryBaseline()
}

// Expired reports whether an expiration has passed at the close time
// of the parent ledger. An entry expiring exactly at the close time is
// still live.
func (ctx *ApplyContext) Expired(expiration *int64) bool {
	if expiration == nil {
		return false
	}
	return int64(ctx.Config.ParentCloseTime) > *expiration
}

package rpc

import (
	"time"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// newRegistry builds the full method table over one node. The HTTP
// server and the WebSocket hub both dispatch through it.
func newRegistry(node *service.Service, version string, started time.Time) *MethodRegistry {
	r := NewMethodRegistry()

	// Server state
	r.Register("server_info", &ServerInfoMethod{node: node, version: version, started: started})
	r.Register("ping", &PingMethod{})
	r.Register("fee", &FeeMethod{node: node})

	// Ledgers
	r.Register("ledger", &LedgerMethod{node: node})
	r.Register("ledger_current", &LedgerCurrentMethod{node: node})
	r.Register("ledger_closed", &LedgerClosedMethod{node: node})
	r.Register("ledger_accept", &LedgerAcceptMethod{node: node})

	// Accounts
	r.Register("account_info", &AccountInfoMethod{node: node})
	r.Register("account_offers", &AccountOffersMethod{node: node})
	r.Register("account_tx", &AccountTxMethod{node: node})

	// Transactions and offers
	r.Register("submit", &SubmitMethod{node: node})
	r.Register("tx", &TxMethod{node: node})
	r.Register("offer", &OfferMethod{node: node})
	r.Register("offer_id", &OfferIDMethod{})

	return r
}

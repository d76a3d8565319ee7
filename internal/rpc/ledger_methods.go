package rpc

import (
	"time"

	"github.com/LeJamon/goswapd/internal/core/ledger/header"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// LedgerMethod handles the ledger RPC method.
type LedgerMethod struct {
	node *service.Service
}

func (m *LedgerMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		LedgerSpecifier
		Transactions bool `json:"transactions,omitempty"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}

	l, err := m.node.ResolveLedger(ctx.Context, req.spec())
	if err != nil {
		return nil, errorFromService(err)
	}

	h := l.Header()
	ledgerMap := map[string]any{
		"ledger_index":      h.Sequence,
		"parent_hash":       hashString(h.ParentHash),
		"account_hash":      hashString(h.AccountHash),
		"transaction_hash":  hashString(h.TxHash),
		"total_supply":      h.TotalSupply.String(),
		"close_time":        h.CloseTime,
		"parent_close_time": h.ParentCloseTime,
		"closed":            h.Closed,
	}
	if h.Closed {
		ledgerMap["ledger_hash"] = hashString(h.Hash)
		ledgerMap["close_time_human"] = header.FromNetworkTime(h.CloseTime).UTC().Format(time.RFC3339)
	}
	if req.Transactions {
		hashes := make([]string, 0, l.TxCount())
		for _, rec := range l.Txs() {
			hashes = append(hashes, hashString(rec.Hash))
		}
		ledgerMap["transactions"] = hashes
	}

	response := map[string]any{
		"ledger":       ledgerMap,
		"ledger_index": h.Sequence,
		"validated":    h.Validated,
	}
	if h.Closed {
		response["ledger_hash"] = hashString(h.Hash)
	}
	return response, nil
}

// LedgerCurrentMethod handles the ledger_current RPC method.
type LedgerCurrentMethod struct {
	node *service.Service
}

func (m *LedgerCurrentMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	open := m.node.OpenLedger()
	if open == nil {
		return nil, RpcErrorNoCurrent("Node has no open ledger yet.")
	}
	return map[string]any{
		"ledger_current_index": open.Sequence(),
	}, nil
}

// LedgerClosedMethod handles the ledger_closed RPC method.
type LedgerClosedMethod struct {
	node *service.Service
}

func (m *LedgerClosedMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	closed := m.node.ClosedLedger()
	if closed == nil {
		return nil, RpcErrorNoCurrent("Node has no closed ledger yet.")
	}
	return map[string]any{
		"ledger_hash":  hashString(closed.Hash()),
		"ledger_index": closed.Sequence(),
	}, nil
}

// LedgerAcceptMethod handles the ledger_accept RPC method: it closes
// the open ledger. Standalone nodes only.
type LedgerAcceptMethod struct {
	node *service.Service
}

func (m *LedgerAcceptMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	closed, err := m.node.AcceptLedger(ctx.Context)
	if err != nil {
		return nil, errorFromService(err)
	}
	return map[string]any{
		"ledger_current_index": closed + 1,
	}, nil
}

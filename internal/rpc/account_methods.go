package rpc

import (
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

// AccountInfoMethod handles the account_info RPC method.
type AccountInfoMethod struct {
	node *service.Service
}

func (m *AccountInfoMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		Account string `json:"account"`
		LedgerSpecifier
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorMissingField("account")
	}

	res, err := m.node.AccountInfo(ctx.Context, req.Account, req.spec())
	if err != nil {
		return nil, errorFromService(err)
	}

	// The flattened root carries the raw account ID; the response
	// echoes the address the caller speaks.
	accountData := res.Root.Flatten()
	accountData["Account"] = res.Address

	return map[string]any{
		"account_data": accountData,
		"ledger_index": res.LedgerSequence,
		"validated":    res.Validated,
	}, nil
}

// AccountOffersMethod handles the account_offers RPC method: every
// offer the account makes or is named taker of.
type AccountOffersMethod struct {
	node *service.Service
}

func (m *AccountOffersMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		Account string `json:"account"`
		LedgerSpecifier
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorMissingField("account")
	}

	res, err := m.node.AccountOffers(ctx.Context, req.Account, req.spec())
	if err != nil {
		return nil, errorFromService(err)
	}

	offers := make([]map[string]any, 0, len(res.Offers))
	for _, o := range res.Offers {
		entry := o.Offer.Flatten()
		entry["index"] = o.OfferID
		offers = append(offers, entry)
	}

	return map[string]any{
		"account":      res.Address,
		"offers":       offers,
		"ledger_index": res.LedgerSequence,
		"validated":    res.Validated,
	}, nil
}

// AccountTxMethod handles the account_tx RPC method over the journal.
type AccountTxMethod struct {
	node *service.Service
}

func (m *AccountTxMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		Account        string `json:"account"`
		LedgerIndexMin int64  `json:"ledger_index_min,omitempty"`
		LedgerIndexMax int64  `json:"ledger_index_max,omitempty"`
		Limit          uint32 `json:"limit,omitempty"`
		Forward        bool   `json:"forward,omitempty"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorMissingField("account")
	}

	// Negative bounds mean "as far as the journal goes", matching the
	// conventional -1 clients send.
	q := relationaldb.AccountTxQuery{
		Account:     req.Account,
		Limit:       req.Limit,
		OldestFirst: req.Forward,
	}
	if req.LedgerIndexMin > 0 {
		q.MinLedger = relationaldb.LedgerIndex(req.LedgerIndexMin)
	}
	if req.LedgerIndexMax > 0 {
		q.MaxLedger = relationaldb.LedgerIndex(req.LedgerIndexMax)
	}

	txs, err := m.node.AccountTxs(ctx.Context, q)
	if err != nil {
		return nil, errorFromService(err)
	}

	rows := make([]map[string]any, 0, len(txs))
	for _, info := range txs {
		row := map[string]any{
			"hash":         hashString(info.Hash),
			"ledger_index": uint32(info.LedgerSeq),
			"txn_index":    info.TxnSeq,
			"account":      info.Account,
			"tx_type":      info.TxType,
			"result":       info.Result,
			"tx_blob":      blobString(info.RawTxn),
			"validated":    true,
		}
		if len(info.TxnMeta) > 0 {
			row["meta"] = json.RawMessage(info.TxnMeta)
		}
		rows = append(rows, row)
	}

	return map[string]any{
		"account":          req.Account,
		"ledger_index_min": req.LedgerIndexMin,
		"ledger_index_max": req.LedgerIndexMax,
		"transactions":     rows,
		"validated":        true,
	}, nil
}

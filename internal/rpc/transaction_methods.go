package rpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// SubmitMethod handles the submit RPC method. The transaction arrives
// either as tx_blob, the canonical wire encoding in hex, or as
// tx_json, the flattened field object.
type SubmitMethod struct {
	node *service.Service
}

func (m *SubmitMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		TxBlob string         `json:"tx_blob,omitempty"`
		TxJSON map[string]any `json:"tx_json,omitempty"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}

	var txn tx.Transaction
	switch {
	case req.TxBlob != "":
		raw, err := hex.DecodeString(req.TxBlob)
		if err != nil {
			return nil, RpcErrorInvalidParams("tx_blob is not hex: " + err.Error())
		}
		flat, err := tx.DecodeCanonical(raw)
		if err != nil {
			return nil, RpcErrorInvalidParams("Invalid transaction blob: " + err.Error())
		}
		txn, err = tx.FromFlat(flat)
		if err != nil {
			return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
		}
	case req.TxJSON != nil:
		data, err := json.Marshal(req.TxJSON)
		if err != nil {
			return nil, RpcErrorInvalidParams("Invalid tx_json: " + err.Error())
		}
		txn, err = tx.FromJSON(data)
		if err != nil {
			return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
		}
	default:
		return nil, RpcErrorInvalidParams("Either tx_blob or tx_json must be provided.")
	}

	res, err := m.node.SubmitTransaction(txn)
	if err != nil {
		return nil, errorFromService(err)
	}

	response := map[string]any{
		"engine_result":          res.Result.String(),
		"engine_result_code":     int(res.Result),
		"engine_result_message":  res.Message,
		"applied":                res.Applied,
		"fee":                    res.Fee.String(),
		"ledger_current_index":   res.OpenLedger,
		"validated_ledger_index": res.ValidatedLedger,
	}
	// Echo the transaction as judged, sequence and fee filled in.
	if blob, err := tx.Serialize(txn); err == nil {
		response["tx_blob"] = blobString(blob)
	}
	if txJSON, err := tx.ToJSON(txn); err == nil {
		response["tx_json"] = json.RawMessage(txJSON)
	}
	if res.Applied {
		response["tx_hash"] = hashString(res.TxHash)
	}
	return response, nil
}

// TxMethod handles the tx RPC method: one applied transaction located
// by hash.
type TxMethod struct {
	node *service.Service
}

func (m *TxMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		Transaction string `json:"transaction"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Transaction == "" {
		return nil, RpcErrorMissingField("transaction")
	}

	raw, err := hex.DecodeString(req.Transaction)
	if err != nil || len(raw) != 32 {
		return nil, RpcErrorInvalidParams("transaction must be a 64 character hex hash.")
	}
	var hash [32]byte
	copy(hash[:], raw)

	lk, err := m.node.Tx(ctx.Context, hash)
	if err != nil {
		return nil, errorFromService(err)
	}

	response := map[string]any{
		"hash":         hashString(lk.Hash),
		"ledger_index": lk.LedgerSequence,
		"close_time":   lk.CloseTime,
		"validated":    lk.Validated,
		"tx_blob":      blobString(lk.Blob),
	}
	if flat, err := tx.DecodeCanonical(lk.Blob); err == nil {
		response["tx_json"] = flat
	}
	if len(lk.MetaJSON) > 0 {
		response["meta"] = json.RawMessage(lk.MetaJSON)
	}
	return response, nil
}

// OfferMethod handles the offer RPC method: one offer entry located
// by identifier.
type OfferMethod struct {
	node *service.Service
}

func (m *OfferMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		OfferID string `json:"offer_id"`
		LedgerSpecifier
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.OfferID == "" {
		return nil, RpcErrorMissingField("offer_id")
	}

	res, err := m.node.Offer(ctx.Context, req.OfferID, req.spec())
	if err != nil {
		return nil, errorFromService(err)
	}

	entry := res.Offer.Flatten()
	entry["index"] = res.OfferID

	return map[string]any{
		"offer_id":     res.OfferID,
		"offer":        entry,
		"ledger_index": res.LedgerSequence,
		"validated":    res.Validated,
	}, nil
}

// OfferIDMethod handles the offer_id RPC method: the deterministic
// offer identifier and salt for a maker and asset pair, computed
// without touching the ledger.
type OfferIDMethod struct{}

func (m *OfferIDMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	var req struct {
		Maker        string `json:"maker"`
		OfferAsset   string `json:"offer_asset"`
		ReceiveAsset string `json:"receive_asset"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Maker == "" {
		return nil, RpcErrorMissingField("maker")
	}
	if req.OfferAsset == "" {
		return nil, RpcErrorMissingField("offer_asset")
	}
	if req.ReceiveAsset == "" {
		return nil, RpcErrorMissingField("receive_asset")
	}

	id, salt, err := tx.DeriveOfferAddress(req.Maker, req.OfferAsset, req.ReceiveAsset)
	if err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}
	return map[string]any{
		"offer_id": id,
		"salt":     uint32(salt),
	}, nil
}

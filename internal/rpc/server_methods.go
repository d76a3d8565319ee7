package rpc

import (
	"time"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// ServerInfoMethod handles the server_info RPC method.
type ServerInfoMethod struct {
	node    *service.Service
	version string
	started time.Time
}

func (m *ServerInfoMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	info, err := m.node.Info()
	if err != nil {
		return nil, errorFromService(err)
	}

	return map[string]any{
		"info": map[string]any{
			"build_version":    m.version,
			"hostid":           "swapd",
			"network_id":       info.NetworkID,
			"server_state":     "full",
			"standalone":       info.Standalone,
			"complete_ledgers": info.CompleteLedgers,
			"uptime":           int64(info.Uptime.Seconds()),
			"time":             time.Now().UTC().Format(time.RFC3339),
			"validated_ledger": map[string]any{
				"seq":          info.ValidatedSequence,
				"hash":         hashString(info.ValidatedHash),
				"close_time":   info.ValidatedCloseTime,
				"total_supply": info.TotalSupply.String(),
			},
			"open_ledger": map[string]any{
				"seq":       info.OpenSequence,
				"txn_count": info.OpenTxCount,
			},
			"fees": map[string]any{
				"base_fee":        info.Fees.Base.String(),
				"account_reserve": info.Fees.Reserve.String(),
				"entry_baseline":  info.Fees.Increment.String(),
			},
		},
	}, nil
}

// PingMethod handles the ping RPC method.
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	return map[string]any{}, nil
}

// FeeMethod handles the fee RPC method: the cost schedule plus the
// open ledger's fill level.
type FeeMethod struct {
	node *service.Service
}

func (m *FeeMethod) Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError) {
	info, err := m.node.Info()
	if err != nil {
		return nil, errorFromService(err)
	}

	return map[string]any{
		"base_fee":             info.Fees.Base.String(),
		"account_reserve":      info.Fees.Reserve.String(),
		"entry_baseline":       info.Fees.Increment.String(),
		"current_ledger_size":  info.OpenTxCount,
		"ledger_current_index": info.OpenSequence,
	}, nil
}

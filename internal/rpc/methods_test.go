package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func testCtx() *RpcContext {
	return &RpcContext{Context: context.Background()}
}

func TestDecodeParamsWeakTyping(t *testing.T) {
	var req struct {
		LedgerIndex  string `json:"ledger_index"`
		Limit        uint32 `json:"limit"`
		Transactions bool   `json:"transactions"`
	}

	// Clients send numbers where strings are expected and vice versa;
	// the decoder absorbs both.
	rpcErr := decodeParams(map[string]any{
		"ledger_index": float64(7),
		"limit":        "25",
		"transactions": "true",
	}, &req)
	require.Nil(t, rpcErr)

	assert.Equal(t, "7", req.LedgerIndex)
	assert.Equal(t, uint32(25), req.Limit)
	assert.True(t, req.Transactions)
}

func TestDecodeParamsBadValue(t *testing.T) {
	var req struct {
		Limit uint32 `json:"limit"`
	}

	rpcErr := decodeParams(map[string]any{"limit": "plenty"}, &req)
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcINVALID_PARAMS, rpcErr.Code)
}

func TestDecodeParamsIgnoresUnknownFields(t *testing.T) {
	var req struct {
		Account string `json:"account"`
	}

	rpcErr := decodeParams(map[string]any{
		"account":     "rSomeAccount",
		"api_version": 2,
	}, &req)
	require.Nil(t, rpcErr)
	assert.Equal(t, "rSomeAccount", req.Account)
}

func TestErrorFromService(t *testing.T) {
	cases := []struct {
		err  error
		code int
		name string
	}{
		{service.ErrNotStarted, RpcNO_CURRENT, "noCurrent"},
		{service.ErrNotStandalone, RpcNOT_STANDALONE, "notStandalone"},
		{service.ErrLedgerNotFound, RpcLGR_NOT_FOUND, "lgrNotFound"},
		{service.ErrAccountNotFound, RpcACT_NOT_FOUND, "actNotFound"},
		{service.ErrOfferNotFound, RpcOBJECT_NOT_FOUND, "objectNotFound"},
		{service.ErrTxNotFound, RpcTXN_NOT_FOUND, "txnNotFound"},
		{service.ErrNoJournal, RpcNOT_SUPPORTED, "notSupported"},
		{service.ErrInvalidAddress, RpcINVALID_PARAMS, "invalidParams"},
		{service.ErrInvalidOfferID, RpcINVALID_PARAMS, "invalidParams"},
		{service.ErrInvalidLedgerSpec, RpcINVALID_PARAMS, "invalidParams"},
		{errors.New("disk on fire"), RpcINTERNAL, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rpcErr := errorFromService(tc.err)
			require.NotNil(t, rpcErr)
			assert.Equal(t, tc.code, rpcErr.Code)
			assert.Equal(t, tc.name, rpcErr.ErrorString)

			// Wrapped sentinels map the same way.
			wrapped := errorFromService(fmt.Errorf("lookup: %w", tc.err))
			assert.Equal(t, tc.code, wrapped.Code)
		})
	}
}

func TestRpcErrorMessage(t *testing.T) {
	e := RpcErrorMissingField("account")
	assert.Equal(t, RpcINVALID_PARAMS, e.Code)
	assert.Contains(t, e.Message, "account")
	assert.Equal(t, e.Message, e.Error())

	bare := NewRpcError(RpcUNKNOWN, "unknown", "")
	assert.Equal(t, "unknown", bare.Error())
}

func TestLedgerSpecifier(t *testing.T) {
	hash := strings.Repeat("AB", 32)

	assert.Equal(t, "", LedgerSpecifier{}.spec())
	assert.Equal(t, "validated", LedgerSpecifier{LedgerIndex: "validated"}.spec())
	// A hash beats an index when both are present.
	assert.Equal(t, hash, LedgerSpecifier{LedgerHash: hash, LedgerIndex: "closed"}.spec())
}

func TestRegistryMethods(t *testing.T) {
	srv, _, _ := newTestServer(t)

	names := srv.Registry().Methods()
	for _, want := range []string{
		"account_info", "account_offers", "account_tx",
		"fee", "ledger", "ledger_accept", "ledger_closed", "ledger_current",
		"offer", "offer_id", "ping", "server_info", "submit", "tx",
	} {
		assert.Contains(t, names, want)
	}
	assert.True(t, sort.StringsAreSorted(names))

	_, ok := srv.Registry().Get("submit")
	assert.True(t, ok)
	_, ok = srv.Registry().Get("shutdown")
	assert.False(t, ok)
}

func TestOfferIDMethod(t *testing.T) {
	alice := jtx.NewAccount("alice")
	asset := strings.Repeat("11", 32)
	m := &OfferIDMethod{}

	result, rpcErr := m.Handle(testCtx(), map[string]any{
		"maker":         alice.Address,
		"offer_asset":   "native",
		"receive_asset": asset,
	})
	require.Nil(t, rpcErr)

	wantID, wantSalt, err := tx.DeriveOfferAddress(alice.Address, "native", asset)
	require.NoError(t, err)
	assert.Equal(t, wantID, result["offer_id"])
	assert.Equal(t, uint32(wantSalt), result["salt"])
}

func TestOfferIDMethodMissingFields(t *testing.T) {
	m := &OfferIDMethod{}

	_, rpcErr := m.Handle(testCtx(), map[string]any{})
	require.NotNil(t, rpcErr)
	assert.Contains(t, rpcErr.Message, "maker")

	_, rpcErr = m.Handle(testCtx(), map[string]any{"maker": "rAccount"})
	require.NotNil(t, rpcErr)
	assert.Contains(t, rpcErr.Message, "offer_asset")
}

func TestOfferIDMethodRejectsBadAddress(t *testing.T) {
	m := &OfferIDMethod{}

	_, rpcErr := m.Handle(testCtx(), map[string]any{
		"maker":         "not-an-address",
		"offer_asset":   "native",
		"receive_asset": strings.Repeat("22", 32),
	})
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcINVALID_PARAMS, rpcErr.Code)
}

func TestMakeEcho(t *testing.T) {
	echo := makeEcho("ledger", map[string]any{"ledger_index": "validated"})
	assert.Equal(t, "ledger", echo["command"])
	assert.Equal(t, "validated", echo["ledger_index"])

	// No params still yields the command.
	echo = makeEcho("ping", nil)
	assert.Equal(t, map[string]any{"command": "ping"}, echo)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:50000"
	assert.Equal(t, "192.0.2.10", clientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, "203.0.113.5", clientIP(r))
}

package asset

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// BaseFee returns the per-transaction fee the environment charges.
func BaseFee(env *jtx.TestEnv) amount.Amount {
	return env.Fees().Base
}

// Supply reads the minted supply recorded in the asset's registry
// entry.
func Supply(t *testing.T, env *jtx.TestEnv, asset string) amount.Amount {
	t.Helper()
	raw, err := hex.DecodeString(asset)
	require.NoError(t, err, "asset key %q", asset)
	require.Len(t, raw, 32, "asset key %q", asset)
	var key [32]byte
	copy(key[:], raw)

	data, err := env.Ledger().Read(keylet.Keylet{Type: record.TypeAsset, Key: key})
	require.NoError(t, err, "read asset registry entry")
	a, err := record.ParseAsset(data)
	require.NoError(t, err, "parse asset registry entry")
	return a.Supply
}

// RequireSupply asserts the minted supply of an asset.
func RequireSupply(t *testing.T, env *jtx.TestEnv, asset string, expected amount.Amount) {
	t.Helper()
	actual := Supply(t, env, asset)
	require.Equal(t, expected, actual,
		"asset %s supply: expected %v, got %v", asset, expected, actual)
}

// RequireConservation asserts that no native units were created or
// destroyed outside of fees: ledger holdings plus burned fees must
// equal the genesis supply.
func RequireConservation(t *testing.T, env *jtx.TestEnv) {
	t.Helper()
	var held amount.Amount
	err := env.Ledger().ForEach(func(key [32]byte, data []byte) bool {
		rec, err := record.Parse(data)
		if err != nil {
			return true
		}
		switch r := rec.(type) {
		case *record.AccountRoot:
			held += r.Balance
		case *record.Offer:
			held += r.Balance
		}
		return true
	})
	require.NoError(t, err, "iterate ledger state")
	burned := env.FeesBurned()
	require.Equal(t, genesis.InitialSupply, held+burned,
		"native supply not conserved: held %s + burned %s", held, burned)
}

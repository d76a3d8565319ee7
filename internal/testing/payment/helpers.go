package payment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// BaseFee returns the per-transaction fee the environment charges.
func BaseFee(env *jtx.TestEnv) amount.Amount {
	return env.Fees().Base
}

// Reserve returns the native floor every account must keep: the
// minimum opening balance of a created account, and the remainder no
// debit may cut below.
func Reserve(env *jtx.TestEnv) amount.Amount {
	return env.Fees().Reserve
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

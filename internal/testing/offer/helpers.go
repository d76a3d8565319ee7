package offer

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

// Baseline returns the native amount locked into every offer entry at
// creation, refunded to the maker on settlement or withdrawal.
func Baseline(env *jtx.TestEnv) amount.Amount {
	return env.Fees().EntryBaseline()
}

// BaseFee returns the per-transaction fee the environment charges.
func BaseFee(env *jtx.TestEnv) amount.Amount {
	return env.Fees().Base
}

// NowUnix returns the environment clock's current unix second. Offers
// expiring at exactly this second are still live when the next ledger
// closes no later than it.
func NowUnix(env *jtx.TestEnv) int64 {
	return env.Clock().Now().Unix()
}

// TotalNative sums the native units held across the ledger: every
// account balance plus every offer entry balance. Offer entries hold
// their escrow and baseline, so the sum stays put while value moves.
func TotalNative(env *jtx.TestEnv) amount.Amount {
	var total amount.Amount
	err := env.Ledger().ForEach(func(key [32]byte, data []byte) bool {
		rec, err := record.Parse(data)
		if err != nil {
			return true
		}
		switch r := rec.(type) {
		case *record.AccountRoot:
			total += r.Balance
		case *record.Offer:
			total += r.Balance
		}
		return true
	})
	if err != nil {
		panic("iterate ledger state: " + err.Error())
	}
	return total
}

// RequireConservation asserts that no native units were created or
// destroyed outside of fees: ledger holdings plus burned fees must
// equal the genesis supply.
func RequireConservation(t *testing.T, env *jtx.TestEnv) {
	t.Helper()
	held := TotalNative(env)
	burned := env.FeesBurned()
	require.Equal(t, genesis.InitialSupply, held+burned,
		"native supply not conserved: held %s + burned %s", held, burned)
}

// CountOffers returns how many offer entries the account has made,
// regardless of status.
func CountOffers(env *jtx.TestEnv, acc *jtx.Account) int {
	count := 0
	err := env.Ledger().ForEach(func(key [32]byte, data []byte) bool {
		rec, err := record.Parse(data)
		if err != nil {
			return true
		}
		if o, ok := rec.(*record.Offer); ok && o.Maker == acc.ID {
			count++
		}
		return true
	})
	if err != nil {
		panic("iterate ledger state: " + err.Error())
	}
	return count
}

// RequireOfferCount asserts the number of offer entries made by the
// account.
func RequireOfferCount(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, want int) {
	t.Helper()
	require.Equal(t, want, CountOffers(env, acc),
		"offer count for %s", acc.Name)
}

// OfferKey decodes a 64-hex entry key into its raw form for
// record-level comparisons.
func OfferKey(t *testing.T, id string) [32]byte {
	t.Helper()
	raw, err := hex.DecodeString(id)
	require.NoError(t, err, "entry key %q", id)
	require.Len(t, raw, 32, "entry key %q", id)
	var key [32]byte
	copy(key[:], raw)
	return key
}

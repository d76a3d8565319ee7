// Offer withdrawal: escrow refunds, the locked baseline, and which
// entries can still be withdrawn.
package offer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func TestOfferCancelRefundsEscrow(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateAsset(issuer, "GLD", 2)

	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(40), gold, jtx.TokenUnits(200, 2)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-jtx.SWP(40)-Baseline(env)-BaseFee(env))
	env.Close()

	// Withdrawal returns the escrow; the baseline stays with the
	// retired entry.
	jtx.AssertBalanceChange(t, env, alice, int64(jtx.SWP(40))-int64(BaseFee(env)), func() {
		jtx.RequireTxSuccess(t, env.Submit(OfferCancel(alice, oc.OfferID).Build()))
	})

	info := env.OfferInfo(oc.OfferID)
	require.Equal(t, record.StatusDeclined, info.Status)
	require.True(t, info.EscrowedNative.IsZero())
	require.Equal(t, Baseline(env), info.Balance)
	jtx.RequireOwnerCount(t, env, alice, 1)
	RequireConservation(t, env)
}

func TestOfferCancelTokenSide(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(100, 2),
	})

	oc := OfferCreate(alice, "PublicSell", gold, jtx.TokenUnits(80, 2), "native", jtx.SWP(8)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()

	// Nothing to refund: the ask never left the holding.
	jtx.AssertBalanceChange(t, env, alice, -int64(BaseFee(env)), func() {
		jtx.RequireTxSuccess(t, env.Submit(OfferCancel(alice, oc.OfferID).Build()))
	})
	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusDeclined)
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(100, 2))
	RequireConservation(t, env)
}

func TestOfferCancelOnlyActive(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(100, 2),
		bob:   jtx.TokenUnits(400, 2),
	})

	// A settled offer cannot be withdrawn.
	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(50, 2)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()
	jtx.RequireTxSuccess(t, env.Submit(OfferAccept(bob, oc.OfferID, alice).Build()))
	jtx.RequireTxClaimed(t, env.Submit(OfferCancel(alice, oc.OfferID).Build()), "tecOFFER_NOT_ACTIVE")

	// Nor can a missing one.
	ghost := strings.Repeat("CD", 32)
	jtx.RequireTxClaimed(t, env.Submit(OfferCancel(alice, ghost).Build()), "tecNO_ENTRY")
	RequireConservation(t, env)
}

func TestOfferCancelIgnoresExpiry(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateAsset(issuer, "GLD", 2)

	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(30), gold, jtx.TokenUnits(90, 2)).
		Expiration(NowUnix(env) + 15).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()
	env.Close()

	// Twenty seconds later the offer has lapsed, but withdrawal does
	// not look at the clock: the maker still gets the escrow back.
	jtx.AssertBalanceChange(t, env, alice, int64(jtx.SWP(30))-int64(BaseFee(env)), func() {
		jtx.RequireTxSuccess(t, env.Submit(OfferCancel(alice, oc.OfferID).Build()))
	})
	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusDeclined)
	RequireConservation(t, env)
}

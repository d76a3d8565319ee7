// Offer expiration: the close-time boundary, lapse-on-touch retirement
// with its escrow refund, and the operations that ignore the clock.
package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func TestOfferAcceptExpirationBoundary(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(50, 2),
		bob:   jtx.TokenUnits(400, 2),
	})
	silver := env.CreateToken(issuer, "SLV", 0, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(10, 0),
		bob:   jtx.TokenUnits(600, 0),
	})

	// Both offers lapse after the same instant, ten seconds out.
	deadline := NowUnix(env) + 10
	first := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).
		Expiration(deadline).BuildOfferCreate()
	second := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), silver, jtx.TokenUnits(200, 0)).
		Expiration(deadline).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(first))
	jtx.RequireTxSuccess(t, env.Submit(second))

	// One close later the clock sits exactly on the deadline. Expiring
	// at the close time is not past it; the first offer still settles.
	env.Close()
	require.Equal(t, deadline, NowUnix(env))
	jtx.RequireTxSuccess(t, env.Submit(OfferAccept(bob, first.OfferID, alice).Build()))
	jtx.RequireOfferStatus(t, env, first.OfferID, record.StatusAccepted)

	// One second past it, the second offer is gone.
	env.AdvanceTime(time.Second)
	res := env.Submit(OfferAccept(bob, second.OfferID, alice).Build())
	jtx.RequireTxClaimed(t, res, "tecEXPIRED")
	jtx.RequireOfferStatus(t, env, second.OfferID, record.StatusExpired)
	RequireConservation(t, env)
}

func TestOfferLapsesOnTouch(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(50, 2),
		bob:   jtx.TokenUnits(400, 2),
	})

	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(30), gold, jtx.TokenUnits(100, 2)).
		Expiration(NowUnix(env) + 15).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	aliceAfterCreate := env.Balance(alice)
	env.Close()
	env.Close()

	// The lapsed offer is retired by the very accept that trips over
	// it: the acceptor pays the fee and the maker gets the escrow back.
	res := env.Submit(OfferAccept(bob, oc.OfferID, alice).Build())
	jtx.RequireTxClaimed(t, res, "tecEXPIRED")

	info := env.OfferInfo(oc.OfferID)
	require.Equal(t, record.StatusExpired, info.Status)
	require.True(t, info.EscrowedNative.IsZero())
	require.Equal(t, Baseline(env), info.Balance)
	jtx.RequireBalance(t, env, alice, aliceAfterCreate+jtx.SWP(30))
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)-BaseFee(env))
	jtx.RequireTokenBalance(t, env, bob, gold, jtx.TokenUnits(400, 2))

	// Retired is retired: the next touch is plain refusal.
	res = env.Submit(OfferAccept(bob, oc.OfferID, alice).Build())
	jtx.RequireTxClaimed(t, res, "tecOFFER_NOT_ACTIVE")

	// A lapsed ask retires the same way, with nothing to refund.
	ask := OfferCreate(alice, "PublicSell", gold, jtx.TokenUnits(20, 2), "native", jtx.SWP(2)).
		Expiration(NowUnix(env) + 5).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(ask))
	env.Close()
	res = env.Submit(OfferAccept(bob, ask.OfferID, alice).Build())
	jtx.RequireTxClaimed(t, res, "tecEXPIRED")
	jtx.RequireOfferStatus(t, env, ask.OfferID, record.StatusExpired)
	require.Equal(t, Baseline(env), env.OfferInfo(ask.OfferID).Balance)
	RequireConservation(t, env)
}

func TestOfferCounterIgnoresExpiry(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		bob: jtx.TokenUnits(300, 2),
	})

	oc := OfferCreate(alice, "Direct", "native", jtx.SWP(25), gold, jtx.TokenUnits(100, 2)).
		Destination(bob).Expiration(NowUnix(env) + 5).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()

	// The offer lapsed, but a counter keeps the negotiation alive:
	// countering does not check the clock.
	bc := OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(100, 2), "native", jtx.SWP(30)).
		BuildOfferCounter()
	jtx.RequireTxSuccess(t, env.Submit(bc))
	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusCountered)
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-Baseline(env)-BaseFee(env))

	// The replacement carries no expiration unless it is given one.
	require.Nil(t, env.OfferInfo(bc.NewOfferID).Expiration)
	RequireConservation(t, env)
}

func TestOfferWithoutExpirationNeverLapses(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(50, 2),
		bob:   jtx.TokenUnits(400, 2),
	})

	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))

	// Eight ledgers and eighty seconds later the offer still stands.
	env.CloseAt(env.LedgerSeq() + 8)
	jtx.RequireTxSuccess(t, env.Submit(OfferAccept(bob, oc.OfferID, alice).Build()))
	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusAccepted)
}

// Counter-offers: role swaps, provenance threading, slot reuse and the
// negotiation chain they carry.
package offer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func TestOfferCounterByTakerSwapsRoles(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(100, 2),
		bob:   jtx.TokenUnits(500, 2),
	})

	// Alice bids 50 SWP for bob's 300.00 GLD.
	oc := OfferCreate(alice, "Direct", "native", jtx.SWP(50), gold, jtx.TokenUnits(300, 2)).
		Destination(bob).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()

	// Bob wants 60 SWP for the same gold and says so. The original is
	// retired and its escrow goes back to alice.
	bc := OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(300, 2), "native", jtx.SWP(60)).
		BuildOfferCounter()
	jtx.RequireTxSuccess(t, env.Submit(bc))

	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusCountered)
	jtx.RequireEscrow(t, env, oc.OfferID, amount.New(0))
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-Baseline(env)-BaseFee(env))

	// The reply is a fresh direct offer with the roles reversed.
	reply := env.OfferInfo(bc.NewOfferID)
	require.Equal(t, record.KindDirect, reply.Kind)
	require.Equal(t, record.StatusActive, reply.Status)
	require.Equal(t, bob.ID, reply.Maker)
	require.NotNil(t, reply.Taker)
	require.Equal(t, alice.ID, *reply.Taker)
	require.True(t, reply.IsCounter)
	require.NotNil(t, reply.OriginOffer)
	require.Equal(t, OfferKey(t, oc.OfferID), *reply.OriginOffer)
	require.Equal(t, bc.Salt, reply.Salt)
	require.True(t, reply.EscrowedNative.IsZero())
	require.Equal(t, Baseline(env), reply.Balance)
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)-Baseline(env)-BaseFee(env))
	env.Close()

	// Alice takes the counter at bob's price.
	res := env.Submit(OfferAccept(alice, bc.NewOfferID, bob).Build())
	jtx.RequireTxSuccess(t, res)
	require.NotNil(t, res.Delivered)
	require.Equal(t, jtx.SWP(60), *res.Delivered)

	jtx.RequireOfferStatus(t, env, bc.NewOfferID, record.StatusAccepted)
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-jtx.SWP(60)-Baseline(env)-2*BaseFee(env))
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)+jtx.SWP(60)-Baseline(env)-BaseFee(env))
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(400, 2))
	jtx.RequireTokenBalance(t, env, bob, gold, jtx.TokenUnits(200, 2))
	jtx.RequireOwnerCount(t, env, alice, 1)
	jtx.RequireOwnerCount(t, env, bob, 1)
	RequireOfferCount(t, env, alice, 1)
	RequireOfferCount(t, env, bob, 1)
	RequireConservation(t, env)
}

func TestOfferCounterByMakerKeepsTaker(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		bob: jtx.TokenUnits(300, 2),
	})
	silver := env.CreateToken(issuer, "SLV", 0, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(50, 0),
		bob:   jtx.TokenUnits(700, 0),
	})

	oc := OfferCreate(alice, "Direct", "native", jtx.SWP(20), gold, jtx.TokenUnits(100, 2)).
		Destination(bob).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()

	// Alice rethinks the trade before bob answers: 15 SWP for silver
	// instead. The reply keeps bob as the addressee.
	ac := OfferCounter(alice, oc.OfferID, "native", jtx.SWP(15), silver, jtx.TokenUnits(250, 0)).
		BuildOfferCounter()
	jtx.RequireTxSuccess(t, env.Submit(ac))

	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusCountered)
	reply := env.OfferInfo(ac.NewOfferID)
	require.Equal(t, alice.ID, reply.Maker)
	require.NotNil(t, reply.Taker)
	require.Equal(t, bob.ID, *reply.Taker)
	require.True(t, reply.IsCounter)
	require.Equal(t, jtx.SWP(15), reply.EscrowedNative)
	require.Equal(t, jtx.SWP(15)+Baseline(env), reply.Balance)

	// Old escrow back, new escrow and baseline out, two entries owned.
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-jtx.SWP(15)-2*Baseline(env)-2*BaseFee(env))
	jtx.RequireOwnerCount(t, env, alice, 2)
	env.Close()

	// Bob settles the revised terms.
	res := env.Submit(OfferAccept(bob, ac.NewOfferID, alice).Build())
	jtx.RequireTxSuccess(t, res)
	require.NotNil(t, res.Delivered)
	require.Equal(t, jtx.TokenUnits(250, 0), *res.Delivered)

	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-2*Baseline(env)-2*BaseFee(env))
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)-BaseFee(env))
	jtx.RequireTokenBalance(t, env, alice, silver, jtx.TokenUnits(300, 0))
	jtx.RequireTokenBalance(t, env, bob, silver, jtx.TokenUnits(450, 0))
	RequireOfferCount(t, env, alice, 2)
	RequireOfferCount(t, env, bob, 0)
	RequireConservation(t, env)
}

func TestOfferCounterNegotiationChain(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(100, 2),
		bob:   jtx.TokenUnits(500, 2),
	})

	// Round one: alice bids 50 SWP for 300.00 GLD.
	first := OfferCreate(alice, "Direct", "native", jtx.SWP(50), gold, jtx.TokenUnits(300, 2)).
		Destination(bob).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(first))
	env.Close()

	// Round two: bob counters at 60 SWP.
	second := OfferCounter(bob, first.OfferID, gold, jtx.TokenUnits(300, 2), "native", jtx.SWP(60)).
		BuildOfferCounter()
	jtx.RequireTxSuccess(t, env.Submit(second))
	env.Close()

	// Alice tries to counter back on her original pair. That derives
	// the slot her first offer already occupies, retired or not.
	res := env.Submit(OfferCounter(alice, second.NewOfferID, "native", jtx.SWP(55), gold, jtx.TokenUnits(300, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecBAD_RECORD")
	jtx.RequireOfferStatus(t, env, second.NewOfferID, record.StatusActive)
	jtx.RequireOfferStatus(t, env, first.OfferID, record.StatusCountered)

	// She settles at 60 SWP instead. The chain still reads back:
	// the reply points at the offer it replaced.
	reply := env.OfferInfo(second.NewOfferID)
	require.NotNil(t, reply.OriginOffer)
	require.Equal(t, OfferKey(t, first.OfferID), *reply.OriginOffer)

	res = env.Submit(OfferAccept(alice, second.NewOfferID, bob).Build())
	jtx.RequireTxSuccess(t, res)

	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-jtx.SWP(60)-Baseline(env)-3*BaseFee(env))
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)+jtx.SWP(60)-Baseline(env)-BaseFee(env))
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(400, 2))
	jtx.RequireTokenBalance(t, env, bob, gold, jtx.TokenUnits(200, 2))
	RequireConservation(t, env)
}

func TestOfferCounterGuards(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		bob: jtx.TokenUnits(200, 2),
	})

	oc := OfferCreate(alice, "Direct", "native", jtx.SWP(10), gold, jtx.TokenUnits(50, 2)).
		Destination(bob).BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))
	env.Close()

	// Countering nothing.
	ghost := strings.Repeat("EF", 32)
	res := env.Submit(OfferCounter(bob, ghost, gold, jtx.TokenUnits(50, 2), "native", jtx.SWP(12)).Build())
	jtx.RequireTxClaimed(t, res, "tecNO_ENTRY")

	// The replacement cannot reuse the countered entry.
	res = env.Submit(OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(50, 2), "native", jtx.SWP(12)).
		NewOfferID(oc.OfferID).Build())
	jtx.RequireTxFail(t, res, "temREDUNDANT")

	// A tampered replacement key fails before anything opens, and the
	// staged escrow release is rolled back with it.
	res = env.Submit(OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(50, 2), "native", jtx.SWP(12)).
		NewOfferID(strings.Repeat("1A", 32)).Build())
	jtx.RequireTxClaimed(t, res, "tecADDRESS_MISMATCH")
	jtx.RequireEscrow(t, env, oc.OfferID, jtx.SWP(10))
	jtx.RequireOfferStatus(t, env, oc.OfferID, record.StatusActive)

	// A real counter retires the original exactly once.
	bc := OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(50, 2), "native", jtx.SWP(12)).
		BuildOfferCounter()
	jtx.RequireTxSuccess(t, env.Submit(bc))
	res = env.Submit(OfferCounter(bob, oc.OfferID, gold, jtx.TokenUnits(60, 2), "native", jtx.SWP(14)).Build())
	jtx.RequireTxClaimed(t, res, "tecOFFER_NOT_ACTIVE")
	RequireConservation(t, env)
}

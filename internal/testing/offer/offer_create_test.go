// Offer creation: entry funding, escrow capture, slot allocation and
// the malformed-input surface.
package offer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func TestOfferCreateEscrowsNativeSide(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateAsset(issuer, "GLD", 2)

	// Alice bids 50 SWP for 500.00 GLD. The offered native units move
	// into the entry at creation, on top of the entry baseline.
	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(50), gold, jtx.TokenUnits(500, 2)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))

	info := env.OfferInfo(oc.OfferID)
	require.Equal(t, record.KindPublicBuy, info.Kind)
	require.Equal(t, record.StatusActive, info.Status)
	require.Equal(t, alice.ID, info.Maker)
	require.Nil(t, info.Taker)
	require.True(t, info.OfferAsset.IsNative())
	require.False(t, info.ReceiveAsset.IsNative())
	require.Equal(t, jtx.SWP(50), info.OfferAmount)
	require.Equal(t, jtx.TokenUnits(500, 2), info.ReceiveAmount)
	require.Equal(t, jtx.SWP(50), info.EscrowedNative)
	require.Equal(t, jtx.SWP(50)+Baseline(env), info.Balance)
	require.Equal(t, oc.Salt, info.Salt)
	require.False(t, info.IsCounter)
	require.Nil(t, info.OriginOffer)
	require.Nil(t, info.Expiration)

	// The maker paid the escrow, the baseline and the fee.
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-jtx.SWP(50)-Baseline(env)-BaseFee(env))
	jtx.RequireOwnerCount(t, env, alice, 1)
	RequireOfferCount(t, env, alice, 1)
	RequireConservation(t, env)
}

func TestOfferCreateTokenSideStaysPut(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateToken(issuer, "GLD", 2, map[*jtx.Account]amount.Amount{
		alice: jtx.TokenUnits(500, 2),
	})

	// Bob has no GLD holding at all, so his ask cannot be backed.
	res := env.Submit(OfferCreate(bob, "PublicSell", gold, jtx.TokenUnits(100, 2), "native", jtx.SWP(10)).Build())
	jtx.RequireTxClaimed(t, res, "tecNO_ENTRY")

	// Alice holds 500.00 GLD; asking with 600.00 outruns the holding.
	res = env.Submit(OfferCreate(alice, "PublicSell", gold, jtx.TokenUnits(600, 2), "native", jtx.SWP(60)).Build())
	jtx.RequireTxClaimed(t, res, "tecUNFUNDED")

	// Within the holding the ask stands, and the tokens stay where they
	// are until acceptance.
	oc := OfferCreate(alice, "PublicSell", gold, jtx.TokenUnits(300, 2), "native", jtx.SWP(30)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(oc))

	info := env.OfferInfo(oc.OfferID)
	require.True(t, info.EscrowedNative.IsZero())
	require.Equal(t, Baseline(env), info.Balance)
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(500, 2))

	// Alice paid two fees and one baseline, bob one fee for the
	// claimed attempt.
	jtx.RequireBalance(t, env, alice, jtx.SWP(1000)-Baseline(env)-2*BaseFee(env))
	jtx.RequireBalance(t, env, bob, jtx.SWP(1000)-BaseFee(env))
	RequireConservation(t, env)
}

func TestOfferCreateReserveFloor(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	poor := jtx.NewAccount("poor")
	tiny := jtx.NewAccount("tiny")
	env.Fund(issuer)
	env.FundAmount(poor, jtx.SWP(13))
	env.FundAmount(tiny, jtx.SWP(11))
	gold := env.CreateAsset(issuer, "GLD", 2)

	// The escrow would eat into the reserve.
	res := env.Submit(OfferCreate(poor, "PublicBuy", "native", jtx.SWP(5), gold, jtx.TokenUnits(50, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecINSUFFICIENT_RESERVE")
	jtx.RequireBalance(t, env, poor, jtx.SWP(13)-BaseFee(env))

	// So would the entry baseline alone.
	res = env.Submit(OfferCreate(tiny, "PublicBuy", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecINSUFFICIENT_RESERVE")
	jtx.RequireBalance(t, env, tiny, jtx.SWP(11)-BaseFee(env))

	RequireOfferCount(t, env, poor, 0)
	RequireOfferCount(t, env, tiny, 0)
	RequireConservation(t, env)
}

func TestOfferCreateOneSlotPerPair(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateAsset(issuer, "GLD", 2)
	silver := env.CreateAsset(issuer, "SLV", 0)

	first := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).
		BuildOfferCreate()
	jtx.RequireTxSuccess(t, env.Submit(first))

	// The same maker and pair derive the same slot; the slot is taken.
	res := env.Submit(OfferCreate(alice, "PublicBuy", "native", jtx.SWP(20), gold, jtx.TokenUnits(250, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecBAD_RECORD")
	jtx.RequireEscrow(t, env, first.OfferID, jtx.SWP(10))

	// A different pair and a different maker each get a slot of their own.
	jtx.RequireTxSuccess(t, env.Submit(
		OfferCreate(alice, "PublicBuy", "native", jtx.SWP(5), silver, jtx.TokenUnits(300, 0)).Build()))
	jtx.RequireTxSuccess(t, env.Submit(
		OfferCreate(bob, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).Build()))
	jtx.RequireOwnerCount(t, env, alice, 2)
	RequireOfferCount(t, env, alice, 2)
	RequireOfferCount(t, env, bob, 1)

	// A retired entry keeps its slot: withdrawing does not free the pair.
	jtx.RequireTxSuccess(t, env.Submit(OfferCancel(alice, first.OfferID).Build()))
	res = env.Submit(OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecBAD_RECORD")
	RequireConservation(t, env)
}

func TestOfferCreateAddressIntegrity(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateAsset(issuer, "GLD", 2)

	// A tampered salt no longer re-derives the claimed key.
	oc := OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).
		BuildOfferCreate()
	oc.Salt++
	jtx.RequireTxClaimed(t, env.Submit(oc), "tecADDRESS_MISMATCH")

	// Claiming a key derived for another maker fails the same way.
	foreign, _, err := tx.DeriveOfferAddress(bob.Address, "native", gold)
	require.NoError(t, err)
	res := env.Submit(OfferCreate(alice, "PublicBuy", "native", jtx.SWP(10), gold, jtx.TokenUnits(100, 2)).
		OfferID(foreign).Build())
	jtx.RequireTxClaimed(t, res, "tecADDRESS_MISMATCH")

	RequireOfferCount(t, env, alice, 0)
	RequireConservation(t, env)
}

func TestOfferCreateRejectsMalformed(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)
	gold := env.CreateAsset(issuer, "GLD", 2)

	cases := []struct {
		name string
		txn  tx.Transaction
		code string
	}{
		{"public buy offering a token",
			OfferCreate(alice, "PublicBuy", gold, jtx.TokenUnits(10, 2), "native", jtx.SWP(1)).Build(),
			"temBAD_OFFER"},
		{"public sell offering native",
			OfferCreate(alice, "PublicSell", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Build(),
			"temBAD_OFFER"},
		{"direct without destination",
			OfferCreate(alice, "Direct", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Build(),
			"temDST_NEEDED"},
		{"direct to self",
			OfferCreate(alice, "Direct", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Destination(alice).Build(),
			"temDST_IS_SRC"},
		{"destination on a public offer",
			OfferCreate(alice, "PublicBuy", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Destination(bob).Build(),
			"temMALFORMED"},
		{"same asset on both legs",
			OfferCreate(alice, "PublicBuy", "native", jtx.SWP(1), "native", jtx.SWP(2)).Build(),
			"temREDUNDANT"},
		{"zero offered amount",
			OfferCreate(alice, "PublicBuy", "native", amount.New(0), gold, jtx.TokenUnits(10, 2)).Build(),
			"temBAD_AMOUNT"},
		{"zero requested amount",
			OfferCreate(alice, "PublicBuy", "native", jtx.SWP(1), gold, amount.New(0)).Build(),
			"temBAD_AMOUNT"},
		{"zero expiration",
			OfferCreate(alice, "PublicBuy", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Expiration(0).Build(),
			"temBAD_EXPIRATION"},
		{"unknown kind",
			OfferCreate(alice, "Barter", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).Build(),
			"temMALFORMED"},
		{"zero entry key",
			OfferCreate(alice, "PublicBuy", "native", jtx.SWP(1), gold, jtx.TokenUnits(10, 2)).
				OfferID(strings.Repeat("0", 64)).Build(),
			"temMALFORMED"},
	}

	// Malformed submissions never reach the fee: the balance and the
	// sequence stay where they were.
	seq := env.Seq(alice)
	jtx.AssertNoBalanceChange(t, env, alice, func() {
		for _, tc := range cases {
			res := env.Submit(tc.txn)
			require.True(t, res.IsMalformed(), "%s: expected a malformed result, got %s", tc.name, res.Code)
			require.Equal(t, tc.code, res.Code, "%s: %s", tc.name, res.Message)
		}
	})
	jtx.RequireSequence(t, env, alice, seq)
	RequireOfferCount(t, env, alice, 0)
	RequireConservation(t, env)
}

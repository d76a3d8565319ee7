// Token registration and minting: one registry slot per issuer and
// code, issuer-only supply, holdings opened by the first credit.
package asset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/tx"
	jtx "github.com/LeJamon/goswapd/internal/testing"
)

func TestAssetCreateRegisters(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	rival := jtx.NewAccount("rival")
	env.Fund(issuer, rival)

	gold := env.AssetID(issuer, "GLD")
	jtx.RequireTxSuccess(t, env.Submit(Create(issuer, "GLD", 2).Build()))
	RequireSupply(t, env, gold, amount.New(0))
	jtx.RequireOwnerCount(t, env, issuer, 1)

	// The registry is keyed by issuer and code; a second registration
	// collides even with a different precision.
	res := env.Submit(Create(issuer, "GLD", 4).Build())
	jtx.RequireTxClaimed(t, res, "tecDUPLICATE")
	jtx.RequireBalance(t, env, issuer, jtx.SWP(1000)-2*BaseFee(env))

	jtx.RequireTxSuccess(t, env.Submit(Create(issuer, "SLV", 0).Build()))
	jtx.RequireOwnerCount(t, env, issuer, 2)

	// Another issuer owns an unrelated GLD.
	jtx.RequireTxSuccess(t, env.Submit(Create(rival, "GLD", 2).Build()))
	require.NotEqual(t, gold, env.AssetID(rival, "GLD"))
	RequireConservation(t, env)
}

func TestAssetIssueMintsSupply(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateAsset(issuer, "GLD", 2)

	res := env.Submit(Issue(issuer, gold, alice, jtx.TokenUnits(250, 2)).Build())
	jtx.RequireTxSuccess(t, res)
	require.NotNil(t, res.Delivered)
	require.Equal(t, jtx.TokenUnits(250, 2), *res.Delivered)
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(250, 2))
	RequireSupply(t, env, gold, jtx.TokenUnits(250, 2))

	// Holdings are not owned ledger objects.
	jtx.RequireOwnerCount(t, env, alice, 0)
	env.Close()

	// The issuer may mint to themselves.
	jtx.RequireTxSuccess(t, env.Submit(Issue(issuer, gold, issuer, jtx.TokenUnits(100, 2)).Build()))
	jtx.RequireTokenBalance(t, env, issuer, gold, jtx.TokenUnits(100, 2))
	RequireSupply(t, env, gold, jtx.TokenUnits(350, 2))

	// Later mints accumulate into the existing holding.
	jtx.RequireTxSuccess(t, env.Submit(Issue(issuer, gold, alice, jtx.TokenUnits(50, 2)).Build()))
	jtx.RequireTokenBalance(t, env, alice, gold, jtx.TokenUnits(300, 2))
	RequireSupply(t, env, gold, jtx.TokenUnits(400, 2))

	// Minting tokens never creates native units.
	jtx.RequireBalance(t, env, issuer, jtx.SWP(1000)-4*BaseFee(env))
	RequireConservation(t, env)
}

func TestAssetIssueGuards(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	mallory := jtx.NewAccount("mallory")
	ghost := jtx.NewAccount("ghost")
	env.Fund(issuer, mallory)
	gold := env.CreateAsset(issuer, "GLD", 2)
	env.Close()

	// Only the registering issuer mints.
	jtx.AssertBalanceChange(t, env, mallory, -int64(BaseFee(env)), func() {
		res := env.Submit(Issue(mallory, gold, mallory, jtx.TokenUnits(10, 2)).Build())
		jtx.RequireTxClaimed(t, res, "tecNO_PERMISSION")
	})

	// A well-formed key with no registry entry behind it.
	phantom := env.AssetID(issuer, "XYZ")
	res := env.Submit(Issue(issuer, phantom, issuer, jtx.TokenUnits(10, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecNO_ENTRY")

	// Minting needs an account to hang the holding on.
	res = env.Submit(Issue(issuer, gold, ghost, jtx.TokenUnits(10, 2)).Build())
	jtx.RequireTxClaimed(t, res, "tecNO_ENTRY")

	RequireSupply(t, env, gold, amount.New(0))
	require.False(t, env.HoldingExists(mallory, gold))
	RequireConservation(t, env)
}

func TestAssetRejectsMalformed(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer, alice)
	gold := env.CreateAsset(issuer, "GLD", 2)

	cases := []struct {
		name string
		txn  tx.Transaction
		code string
	}{
		{"empty code",
			Create(issuer, "", 2).Build(),
			"temMALFORMED"},
		{"code too long",
			Create(issuer, "NINECHARS", 2).Build(),
			"temMALFORMED"},
		{"precision too deep",
			Create(issuer, "DEEP", 19).Build(),
			"temMALFORMED"},
		{"truncated asset key",
			Issue(issuer, gold[:12], alice, jtx.TokenUnits(1, 0)).Build(),
			"temMALFORMED"},
		{"zero asset key",
			Issue(issuer, strings.Repeat("0", 64), alice, jtx.TokenUnits(1, 0)).Build(),
			"temMALFORMED"},
		{"zero amount",
			Issue(issuer, gold, alice, amount.New(0)).Build(),
			"temBAD_AMOUNT"},
		{"missing destination",
			Issue(issuer, gold, alice, jtx.TokenUnits(1, 0)).DestinationAddress("").Build(),
			"temDST_NEEDED"},
		{"garbage destination",
			Issue(issuer, gold, alice, jtx.TokenUnits(1, 0)).DestinationAddress("nope").Build(),
			"temMALFORMED"},
	}

	seq := env.Seq(issuer)
	jtx.AssertNoBalanceChange(t, env, issuer, func() {
		for _, tc := range cases {
			res := env.Submit(tc.txn)
			require.True(t, res.IsMalformed(), "%s: expected a malformed result, got %s", tc.name, res.Code)
			require.Equal(t, tc.code, res.Code, "%s: %s", tc.name, res.Message)
		}
	})
	jtx.RequireSequence(t, env, issuer, seq)
	RequireConservation(t, env)
}

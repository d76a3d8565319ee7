package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

// RequireBalance asserts that an account holds the expected native
// balance.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected amount.Amount) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"account %s balance: expected %v, got %v", acc.Name, expected, actual)
}

// RequireTokenBalance asserts that an account holds the expected token
// balance for an asset.
func RequireTokenBalance(t *testing.T, env *TestEnv, acc *Account, asset string, expected amount.Amount) {
	t.Helper()
	actual := env.TokenBalance(acc, asset)
	require.Equal(t, expected, actual,
		"account %s holding of %s: expected %v, got %v", acc.Name, asset, expected, actual)
}

// RequireTxSuccess asserts that a transaction applied successfully.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"expected success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"expected failure with %s, but the transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"expected %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireTxClaimed asserts that a transaction charged its fee without
// applying: a tec result.
func RequireTxClaimed(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.True(t, result.IsClaimed(),
		"expected a claimed result with %s, got %s", expectedCode, result.Code)
	require.Equal(t, expectedCode, result.Code,
		"expected %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireAccountExists asserts that an account has a ledger entry.
func RequireAccountExists(t *testing.T, env *TestEnv, acc *Account) {
	t.Helper()
	require.True(t, env.Exists(acc), "expected account %s to exist", acc.Name)
}

// RequireAccountNotExists asserts that an account has no ledger entry.
func RequireAccountNotExists(t *testing.T, env *TestEnv, acc *Account) {
	t.Helper()
	require.False(t, env.Exists(acc), "expected account %s to not exist", acc.Name)
}

// RequireSequence asserts the account's next sequence number.
func RequireSequence(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	actual := env.Seq(acc)
	require.Equal(t, expected, actual,
		"account %s sequence: expected %d, got %d", acc.Name, expected, actual)
}

// RequireOwnerCount asserts how many ledger entries the account owns.
func RequireOwnerCount(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	actual := env.OwnerCount(acc)
	require.Equal(t, expected, actual,
		"account %s owner count: expected %d, got %d", acc.Name, expected, actual)
}

// RequireOfferStatus asserts the lifecycle status of an offer entry.
func RequireOfferStatus(t *testing.T, env *TestEnv, offerID string, expected record.Status) {
	t.Helper()
	actual := env.OfferStatus(offerID)
	require.Equal(t, expected, actual,
		"offer %s status: expected %v, got %v", offerID, expected, actual)
}

// RequireEscrow asserts the native units an offer entry holds in
// escrow.
func RequireEscrow(t *testing.T, env *TestEnv, offerID string, expected amount.Amount) {
	t.Helper()
	actual := env.OfferInfo(offerID).EscrowedNative
	require.Equal(t, expected, actual,
		"offer %s escrow: expected %v, got %v", offerID, expected, actual)
}

// AssertBalanceChange runs fn and asserts how the account's native
// balance moved, in signed base units.
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, expectedChange int64, fn func()) {
	t.Helper()
	before := env.Balance(acc)
	fn()
	after := env.Balance(acc)

	actualChange := int64(after) - int64(before)
	require.Equal(t, expectedChange, actualChange,
		"account %s balance change: expected %d, got %d (before %v, after %v)",
		acc.Name, expectedChange, actualChange, before, after)
}

// AssertNoBalanceChange runs fn and asserts the balance stayed put.
func AssertNoBalanceChange(t *testing.T, env *TestEnv, acc *Account, fn func()) {
	t.Helper()
	AssertBalanceChange(t, env, acc, 0, fn)
}

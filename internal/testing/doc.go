// Package testing provides test infrastructure for swap transaction
// testing.
//
// It offers a deterministic environment built around a real ledger and
// the real transaction engine, so tests exercise the same code paths a
// standalone node runs.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: A test environment with ledger state management
//   - Account: Deterministic test accounts with keypairs
//   - Amount helpers: Functions for native and token unit amounts
//   - Transaction builders: Fluent builders for every transaction type
//   - Assertions: Test assertion helpers for common checks
//
// # Basic Usage
//
//	func TestPayment(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := testing.NewAccount("alice")
//	    bob := testing.NewAccount("bob")
//
//	    env.Fund(alice, bob)
//	    env.Close()
//
//	    // Alice sends 100 SWP to Bob
//	    payment := builders.Pay(
//	        builders.NewAccount(alice.Address),
//	        builders.NewAccount(bob.Address),
//	        testing.SWP(100),
//	    ).Build()
//
//	    result := env.Submit(payment)
//	    testing.RequireTxSuccess(t, result)
//	}
//
// # TestEnv
//
// TestEnv manages a test ledger environment. It creates a genesis
// ledger with a master account and provides methods for funding
// accounts, submitting transactions, and closing ledgers.
//
//	env := testing.NewTestEnv(t)
//	env.Fund(alice)                      // Fund account with 1000 SWP
//	env.FundAmount(bob, testing.SWP(50)) // Fund with a specific amount
//	env.Close()                          // Close ledger, advance sequence
//	env.Balance(alice)                   // Native balance in base units
//
// # Account
//
// Account represents a test account with deterministic keypair
// derivation. Using the same name will always produce the same account,
// making tests reproducible.
//
//	alice := testing.NewAccount("alice")  // ed25519 by default
//	bob := testing.NewAccountWithKeyType("bob", crypto.KeyTypeSecp256k1)
//	master := testing.MasterAccount()     // Genesis account
//
// # Amount Helpers
//
// Amount helpers convert between SWP and base units:
//
//	testing.SWP(100)         // 100 SWP = 100,000,000 base units
//	testing.Units(1000)      // 1000 base units
//	testing.TokenUnits(5, 2) // 5 display units at precision 2 = 500
//
// # Assets and Offers
//
// Tokens are registered and minted through the environment:
//
//	gold := env.CreateToken(issuer, "GOLD", 2, map[*testing.Account]amount.Amount{
//	    maker: testing.TokenUnits(10, 2),
//	})
//
// Offers move through their lifecycle with the builders package:
//
//	m := builders.NewAccount(maker.Address)
//	offer := builders.Offer(m, "PublicSell", gold, testing.TokenUnits(10, 2),
//	    "native", testing.SWP(5)).BuildOfferCreate()
//	env.Submit(offer)
//	env.Submit(builders.Accept(builders.NewAccount(acceptor.Address), offer.OfferID, m).Build())
//
// # Assertions
//
// Helper functions for common test assertions:
//
//	testing.RequireBalance(t, env, alice, testing.SWP(900))
//	testing.RequireTxSuccess(t, result)
//	testing.RequireTxClaimed(t, result, "tecUNFUNDED")
//	testing.RequireOfferStatus(t, env, offerID, record.StatusAccepted)
//
// # Clock Control
//
// The test environment uses a ManualClock that can be controlled:
//
//	env.AdvanceTime(10 * time.Second)
//	env.Clock().Set(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
package testing

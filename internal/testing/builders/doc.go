// Package builders provides fluent transaction builder helpers for testing.
//
// This package provides builder pattern implementations for the swap
// transaction types, making it easy to construct transactions in tests
// without dealing with the full transaction structs.
//
// # Payment Builder
//
// Create native and token payments:
//
//	// Native payment
//	Pay(from, to, amount.SWP(50)).Build()
//
//	// With options
//	Pay(from, to, amount.SWP(50)).
//	    Fee(20).
//	    WithMemo("note", "74657374", "").
//	    Build()
//
//	// Token payment
//	PayToken(from, to, asset, amount.New(100)).
//	    Precision(2).
//	    Build()
//
// # Offer Builders
//
// Create, accept, counter, and cancel offers. Build derives the offer
// address from the maker and asset pair:
//
//	// Public offer escrowing native units against a token
//	Offer(maker, "PublicBuy", "native", amount.SWP(5), asset, amount.New(20)).Build()
//
//	// Direct offer with a named counterparty
//	Offer(maker, "Direct", "native", amount.SWP(5), asset, amount.New(20)).
//	    Destination(taker).
//	    Expiration(deadline).
//	    Build()
//
//	// Settle, renegotiate, or withdraw
//	Accept(acceptor, offerID, maker).Build()
//	Counter(sender, offerID, asset, amount.New(40), "native", amount.SWP(4)).Build()
//	Cancel(maker, offerID).Build()
//
// # Asset Builders
//
// Register assets and mint token supply:
//
//	CreateAsset(issuer, "GOLD", 2).Build()
//	IssueAsset(issuer, asset, holder, amount.New(1000)).Build()
package builders

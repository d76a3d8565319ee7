// Package keylet computes the 32-byte state keys of ledger records.
// Every key is the half-SHA512 of a 2-byte namespace tag followed by the
// identifying fields of the record, so any party can recompute a record's
// location without a directory lookup.
package keylet

import (
	"encoding/binary"
	"errors"

	"filippo.io/edwards25519"

	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// Space identifiers, one per record namespace.
const (
	spaceAccount uint16 = 'a' // Account root
	spaceFees    uint16 = 'e' // Fee settings (singleton)
	spaceHolding uint16 = 'h' // Token holding
	spaceOffer   uint16 = 'o' // Offer slot
	spaceAsset   uint16 = 't' // Asset registry
)

// ErrNoUsableSalt is returned when no salt in 255..0 derives an offer key
// outside the ownable key set. The search space makes this effectively
// unreachable for real tuples.
var ErrNoUsableSalt = errors.New("keylet: no usable salt for this tuple")

// Keylet is an addressable location in the ledger state: a record type
// plus its 256-bit key.
type Keylet struct {
	Type record.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// Account returns the keylet for an account root record.
func Account(accountID [20]byte) Keylet {
	return Keylet{
		Type: record.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// Fees returns the keylet for the singleton fee settings record.
func Fees() Keylet {
	return Keylet{
		Type: record.TypeFeeSettings,
		Key:  indexHash(spaceFees),
	}
}

// Asset returns the keylet for a token's registry record. The key doubles
// as the token's asset ID in asset references and holdings.
func Asset(issuer [20]byte, code [8]byte) Keylet {
	return Keylet{
		Type: record.TypeAsset,
		Key:  indexHash(spaceAsset, issuer[:], code[:]),
	}
}

// Holding returns the keylet for one owner's balance of one token.
func Holding(owner [20]byte, asset [32]byte) Keylet {
	return Keylet{
		Type: record.TypeHolding,
		Key:  indexHash(spaceHolding, owner[:], asset[:]),
	}
}

// Offer returns the keylet for an offer slot under an explicit salt.
// Callers holding only the derivation tuple use FindOffer for the
// canonical salt; this form recomputes the key a caller has claimed.
func Offer(maker [20]byte, offerAsset, receiveAsset record.AssetRef, salt uint8) Keylet {
	return Keylet{
		Type: record.TypeOffer,
		Key:  offerIndex(maker, offerAsset, receiveAsset, salt),
	}
}

// FindOffer derives the canonical offer keylet for a tuple: the first
// salt, searching downward from 255, whose key is not an ownable account
// key. Only such keys are safe escrow addresses, because no party can
// ever hold a signing key for them; the engine's derived authority is the
// sole way to act as the entry.
func FindOffer(maker [20]byte, offerAsset, receiveAsset record.AssetRef) (Keylet, uint8, error) {
	for trial := 255; trial >= 0; trial-- {
		salt := uint8(trial)
		key := offerIndex(maker, offerAsset, receiveAsset, salt)
		if !Ownable(key) {
			return Keylet{Type: record.TypeOffer, Key: key}, salt, nil
		}
	}
	return Keylet{}, 0, ErrNoUsableSalt
}

func offerIndex(maker [20]byte, offerAsset, receiveAsset record.AssetRef, salt uint8) [32]byte {
	return indexHash(spaceOffer, maker[:], offerAsset.Encode(), receiveAsset.Encode(), []byte{salt})
}

// Ownable reports whether a 32-byte key decodes to a valid ed25519 curve
// point. Exactly those keys could be the public half of some signing key,
// so derived escrow addresses must fall outside the set.
func Ownable(key [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err == nil
}

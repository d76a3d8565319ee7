package crypto

import (
	"encoding/hex"
	"errors"

	ed25519provider "github.com/LeJamon/goswapd/internal/crypto/algorithms/ed25519"
	secp256k1provider "github.com/LeJamon/goswapd/internal/crypto/algorithms/secp256k1"
)

// SignatureProvider abstracts one signature scheme. Keys and signatures
// cross this boundary hex encoded, uppercase, with the scheme's key
// prefix byte in place.
type SignatureProvider interface {
	GenerateKeypair(seed []byte) (privateKey, publicKey string, err error)
	SignMessage(message []byte, privateKeyHex string) (signature string, err error)
	VerifySignature(message []byte, publicKeyHex, signatureHex string) bool
}

var (
	// ErrUnknownKeyType is returned when no provider serves a key type.
	ErrUnknownKeyType = errors.New("unknown key type")

	ed25519Singleton   = ed25519provider.NewProvider()
	secp256k1Singleton = secp256k1provider.NewProvider()
)

// ProviderFor returns the signature provider for the given key type.
func ProviderFor(kt KeyType) (SignatureProvider, error) {
	switch kt {
	case KeyTypeEd25519:
		return ed25519Singleton, nil
	case KeyTypeSecp256k1:
		return secp256k1Singleton, nil
	default:
		return nil, ErrUnknownKeyType
	}
}

// ProviderForPublicKeyHex picks the provider matching the prefix byte of
// a hex encoded public key.
func ProviderForPublicKeyHex(publicKeyHex string) (SignatureProvider, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, ErrUnknownKeyType
	}
	return ProviderFor(PublicKeyType(raw))
}

// VerifyWithCanonicality verifies a signature and additionally requires
// it to be fully canonical for its scheme. Malleable encodings of an
// otherwise valid signature are rejected so a transaction hash cannot be
// changed in flight.
func VerifyWithCanonicality(message []byte, publicKeyHex, signatureHex string) bool {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	switch PublicKeyType(raw) {
	case KeyTypeEd25519:
		if !Ed25519Canonical(sig) {
			return false
		}
		return ed25519Singleton.VerifySignature(message, publicKeyHex, signatureHex)
	case KeyTypeSecp256k1:
		if ECDSACanonicality(sig) != CanonicityFullyCanonical {
			return false
		}
		return secp256k1Singleton.VerifySignature(message, publicKeyHex, signatureHex)
	default:
		return false
	}
}

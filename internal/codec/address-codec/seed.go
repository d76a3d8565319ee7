package addresscodec

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/crypto"
)

// ErrInvalidSeedAlgorithm is returned when a seed's key type has no
// registered prefix.
var ErrInvalidSeedAlgorithm = errors.New("seed: unsupported key algorithm")

// EncodeSeed encodes 16 bytes of entropy under the prefix of the given
// key type. Ed25519 seeds render as "sEd...", secp256k1 seeds as "s...".
func EncodeSeed(entropy []byte, keyType crypto.KeyType) (string, error) {
	switch keyType {
	case crypto.KeyTypeEd25519:
		return Encode(entropy, ed25519SeedPrefix, SeedLength)
	case crypto.KeyTypeSecp256k1:
		return Encode(entropy, []byte{familySeedPrefix}, SeedLength)
	default:
		return "", ErrInvalidSeedAlgorithm
	}
}

// DecodeSeed decodes an encoded seed into its entropy bytes and the key
// type implied by the prefix.
func DecodeSeed(seed string) ([]byte, crypto.KeyType, error) {
	if entropy, err := Decode(seed, ed25519SeedPrefix); err == nil {
		if len(entropy) != SeedLength {
			return nil, crypto.KeyTypeUnknown, ErrInvalidLength
		}
		return entropy, crypto.KeyTypeEd25519, nil
	}

	entropy, err := Decode(seed, []byte{familySeedPrefix})
	if err != nil {
		return nil, crypto.KeyTypeUnknown, err
	}
	if len(entropy) != SeedLength {
		return nil, crypto.KeyTypeUnknown, ErrInvalidLength
	}
	return entropy, crypto.KeyTypeSecp256k1, nil
}

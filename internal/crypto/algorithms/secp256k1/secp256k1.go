package secp256k1

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// privateKeyPrefix marks hex encoded secp256k1 private keys. Public
// keys need no extra prefix, the compressed form already starts with
// 0x02 or 0x03.
const privateKeyPrefix = 0x00

// Provider implements digital signature operations using secp256k1
// ECDSA. Messages are reduced with SHA-512Half before signing and
// signatures are serialized in low-S DER form.
type Provider struct{}

var (
	ErrInvalidSeed       = errors.New("invalid seed material")
	ErrInvalidPrivateKey = errors.New("invalid private key format")
)

func NewProvider() *Provider {
	return &Provider{}
}

// GenerateKeypair derives a keypair deterministically from seed
// entropy. Candidate scalars are drawn as SHA-512Half(seed || counter)
// until one lands in [1, N-1]; almost always the first candidate.
func (p *Provider) GenerateKeypair(seed []byte) (string, string, error) {
	if len(seed) == 0 {
		return "", "", ErrInvalidSeed
	}

	var counter [4]byte
	for i := uint32(0); i < 128; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		candidate := crypto.Sha512Half(seed, counter[:])

		var scalar secp256k1.ModNScalar
		overflow := scalar.SetBytes(&candidate)
		if overflow != 0 || scalar.IsZero() {
			continue
		}

		privKey := secp256k1.NewPrivateKey(&scalar)
		compressedPubKey := privKey.PubKey().SerializeCompressed()

		prefixedPrivKey := append([]byte{privateKeyPrefix}, privKey.Serialize()...)

		private := strings.ToUpper(hex.EncodeToString(prefixedPrivKey))
		public := strings.ToUpper(hex.EncodeToString(compressedPubKey))

		return private, public, nil
	}

	return "", "", ErrInvalidSeed
}

// SignMessage signs SHA-512Half(message) and returns the DER encoded
// signature. The decred signer always produces the low-S form.
func (p *Provider) SignMessage(message []byte, privateKeyHex string) (string, error) {
	privKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", ErrInvalidPrivateKey
	}
	if len(privKeyBytes) == 33 && privKeyBytes[0] == privateKeyPrefix {
		privKeyBytes = privKeyBytes[1:]
	}
	if len(privKeyBytes) != 32 {
		return "", ErrInvalidPrivateKey
	}

	privKey := secp256k1.PrivKeyFromBytes(privKeyBytes)
	digest := crypto.Sha512Half(message)

	signature := ecdsa.Sign(privKey, digest[:])

	return strings.ToUpper(hex.EncodeToString(signature.Serialize())), nil
}

// VerifySignature reports whether the DER signature is valid for
// SHA-512Half(message) under the compressed hex public key.
func (p *Provider) VerifySignature(message []byte, publicKeyHex, signatureHex string) bool {
	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}

	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	signature, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}

	digest := crypto.Sha512Half(message)
	return signature.Verify(digest[:], pubKey)
}

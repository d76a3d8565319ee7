package ed25519

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"

	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// Provider implements digital signature operations using Ed25519.
type Provider struct {
	keyPrefix byte
}

var (
	ErrInvalidSeed       = errors.New("invalid seed material")
	ErrInvalidPrivateKey = errors.New("invalid private key format")
)

// NewProvider returns the Ed25519 signature provider. Keys carry the
// 0xED prefix byte so they are distinguishable from secp256k1 keys.
func NewProvider() *Provider {
	return &Provider{keyPrefix: 0xED}
}

// GenerateKeypair derives a keypair deterministically from seed
// entropy. The same seed always yields the same keypair.
func (p *Provider) GenerateKeypair(seed []byte) (string, string, error) {
	if len(seed) == 0 {
		return "", "", ErrInvalidSeed
	}

	keyMaterial := crypto.Sha512Half(seed)
	privKey := ed25519.NewKeyFromSeed(keyMaterial[:])
	pubKey := privKey.Public().(ed25519.PublicKey)

	prefixedPubKey := append([]byte{p.keyPrefix}, pubKey...)
	prefixedPrivKey := append([]byte{p.keyPrefix}, keyMaterial[:]...)

	public := strings.ToUpper(hex.EncodeToString(prefixedPubKey))
	private := strings.ToUpper(hex.EncodeToString(prefixedPrivKey))

	return private, public, nil
}

// SignMessage signs the message bytes with the prefixed hex private
// key. Ed25519 hashes internally, the message is signed as is.
func (p *Provider) SignMessage(message []byte, privateKeyHex string) (string, error) {
	privKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(privKeyBytes) != 33 || privKeyBytes[0] != p.keyPrefix {
		return "", ErrInvalidPrivateKey
	}

	signingKey := ed25519.NewKeyFromSeed(privKeyBytes[1:])
	signature := ed25519.Sign(signingKey, message)

	return strings.ToUpper(hex.EncodeToString(signature)), nil
}

// VerifySignature reports whether the signature is valid for the
// message under the prefixed hex public key.
func (p *Provider) VerifySignature(message []byte, publicKeyHex, signatureHex string) bool {
	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pubKeyBytes) != 33 || pubKeyBytes[0] != p.keyPrefix {
		return false
	}

	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pubKeyBytes[1:]), message, sigBytes)
}

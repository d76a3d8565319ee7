package tx

import (
	"encoding/hex"
	"errors"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/crypto"
)

// Signature verification errors.
var (
	ErrMissingSignature  = errors.New("transaction is not signed")
	ErrMissingPublicKey  = errors.New("signing public key is missing")
	ErrInvalidSignature  = errors.New("signature is invalid")
	ErrPublicKeyMismatch = errors.New("public key does not match account")
	ErrUnknownKeyType    = errors.New("unknown public key type")
)

// VerifySignature verifies that a transaction carries a
// cryptographically valid signature over its signing payload. Whether
// the signing key controls the source account is a ledger state
// question and is checked in preclaim, not here.
func VerifySignature(t Transaction) error {
	common := t.GetCommon()

	if common.TxnSignature == "" {
		return ErrMissingSignature
	}
	if common.SigningPubKey == "" {
		return ErrMissingPublicKey
	}

	payload, err := SigningPayload(t)
	if err != nil {
		return errors.New("failed to build signing payload: " + err.Error())
	}

	if !crypto.VerifyWithCanonicality(payload, common.SigningPubKey, common.TxnSignature) {
		return ErrInvalidSignature
	}
	return nil
}

// SignTransaction signs the transaction's signing payload with the
// given prefixed hex private key and returns the hex signature. The
// SigningPubKey must already be set, since it is part of the payload.
func SignTransaction(t Transaction, privateKeyHex string) (string, error) {
	payload, err := SigningPayload(t)
	if err != nil {
		return "", errors.New("failed to build signing payload: " + err.Error())
	}

	privKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(privKeyBytes) == 0 {
		return "", errors.New("invalid private key")
	}

	var kt crypto.KeyType
	switch privKeyBytes[0] {
	case 0xED:
		kt = crypto.KeyTypeEd25519
	case 0x00:
		kt = crypto.KeyTypeSecp256k1
	default:
		return "", ErrUnknownKeyType
	}

	provider, err := crypto.ProviderFor(kt)
	if err != nil {
		return "", err
	}
	return provider.SignMessage(payload, privateKeyHex)
}

// Sign sets the signing public key and signature on the transaction.
func Sign(t Transaction, privateKeyHex, publicKeyHex string) error {
	common := t.GetCommon()
	common.SigningPubKey = publicKeyHex

	sig, err := SignTransaction(t, privateKeyHex)
	if err != nil {
		return err
	}
	common.TxnSignature = sig
	return nil
}

// verifyPublicKeyMatchesAccount checks that the public key derives to
// the given account address.
func verifyPublicKeyMatchesAccount(pubKeyHex, account string) error {
	derived, err := addresscodec.EncodeClassicAddressFromPublicKeyHex(pubKeyHex)
	if err != nil {
		return errors.New("failed to derive address from public key: " + err.Error())
	}
	if derived != account {
		return ErrPublicKeyMismatch
	}
	return nil
}

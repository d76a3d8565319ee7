// Package addresscodec implements the base58 encoding used for account
// addresses, public keys and seeds. The alphabet is the classic ripple
// ordering, chosen so addresses start with 'r' and seeds with 's', and
// every encoding carries a 4-byte double SHA-256 checksum.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"

	"github.com/LeJamon/goswapd/internal/crypto"
)

const (
	alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

	// classicAddressPrefix makes encoded account IDs start with 'r'.
	classicAddressPrefix = 0x00
	// accountPublicKeyPrefix makes encoded public keys start with 'aB'.
	accountPublicKeyPrefix = 0x23
	// familySeedPrefix makes encoded secp256k1 seeds start with 's'.
	familySeedPrefix = 0x21

	checksumLength = 4

	// AccountAddressLength is the decoded account ID length.
	AccountAddressLength = 20
	// AccountPublicKeyLength is the decoded public key length.
	AccountPublicKeyLength = 33
	// SeedLength is the decoded seed entropy length.
	SeedLength = 16
)

// ed25519SeedPrefix makes encoded Ed25519 seeds start with 'sEd'.
var ed25519SeedPrefix = []byte{0x01, 0xE1, 0x4B}

var (
	ErrInvalidCharacter = errors.New("base58: invalid character")
	ErrInvalidChecksum  = errors.New("base58: invalid checksum")
	ErrInvalidPrefix    = errors.New("base58: unexpected type prefix")
	ErrInvalidLength    = errors.New("base58: unexpected payload length")
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// Encode prefixes the payload with typePrefix, appends the checksum and
// encodes the result. expectedLength guards against silently encoding a
// truncated payload.
func Encode(b []byte, typePrefix []byte, expectedLength int) (string, error) {
	if len(b) != expectedLength {
		return "", ErrInvalidLength
	}

	payload := make([]byte, 0, len(typePrefix)+len(b)+checksumLength)
	payload = append(payload, typePrefix...)
	payload = append(payload, b...)

	chk := checksum(payload)
	payload = append(payload, chk...)

	return encodeBase58(payload), nil
}

// Decode decodes a base58 string, verifies the checksum and strips the
// expected type prefix. The returned slice is the bare payload.
func Decode(b58 string, typePrefix []byte) ([]byte, error) {
	decoded, err := decodeBase58(b58)
	if err != nil {
		return nil, err
	}

	if len(decoded) < len(typePrefix)+checksumLength {
		return nil, ErrInvalidLength
	}

	body := decoded[:len(decoded)-checksumLength]
	chk := decoded[len(decoded)-checksumLength:]
	if !bytes.Equal(checksum(body), chk) {
		return nil, ErrInvalidChecksum
	}

	if !bytes.HasPrefix(body, typePrefix) {
		return nil, ErrInvalidPrefix
	}

	return body[len(typePrefix):], nil
}

// EncodeClassicAddressFromPublicKeyHex derives the account ID from a
// hex encoded public key and returns its classic address.
func EncodeClassicAddressFromPublicKeyHex(pubKeyHex string) (string, error) {
	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return "", ErrInvalidPublicKey
	}
	if !crypto.IsValidPublicKey(pubKey) {
		return "", ErrInvalidPublicKey
	}

	accountID := crypto.CalcAccountID(pubKey)
	return Encode(accountID[:], []byte{classicAddressPrefix}, AccountAddressLength)
}

// EncodeAccountIDToClassicAddress encodes a 20-byte account ID.
func EncodeAccountIDToClassicAddress(accountID []byte) (string, error) {
	return Encode(accountID, []byte{classicAddressPrefix}, AccountAddressLength)
}

// DecodeClassicAddressToAccountID decodes a classic address into its
// type prefix and 20-byte account ID.
func DecodeClassicAddressToAccountID(address string) (typePrefix, accountID []byte, err error) {
	accountID, err = Decode(address, []byte{classicAddressPrefix})
	if err != nil {
		return nil, nil, err
	}
	if len(accountID) != AccountAddressLength {
		return nil, nil, ErrInvalidLength
	}
	return []byte{classicAddressPrefix}, accountID, nil
}

// IsValidClassicAddress reports whether the string decodes as a classic
// address with a valid checksum.
func IsValidClassicAddress(address string) bool {
	_, _, err := DecodeClassicAddressToAccountID(address)
	return err == nil
}

// EncodeAccountPublicKey encodes a 33-byte account public key.
func EncodeAccountPublicKey(b []byte) (string, error) {
	return Encode(b, []byte{accountPublicKeyPrefix}, AccountPublicKeyLength)
}

// DecodeAccountPublicKey decodes an encoded account public key to its
// 33 raw bytes.
func DecodeAccountPublicKey(key string) ([]byte, error) {
	decoded, err := Decode(key, []byte{accountPublicKeyPrefix})
	if err != nil {
		return nil, err
	}
	if len(decoded) != AccountPublicKeyLength {
		return nil, ErrInvalidLength
	}
	return decoded, nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

func encodeBase58(input []byte) string {
	x := new(big.Int).SetBytes(input)
	base := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for x.Sign() > 0 {
		x.DivMod(x, base, mod)
		out = append(out, alphabet[mod.Int64()])
	}

	// Each leading zero byte maps to the zero digit.
	for _, b := range input {
		if b != 0 {
			break
		}
		out = append(out, alphabet[0])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(s string) ([]byte, error) {
	x := big.NewInt(0)
	base := big.NewInt(58)

	for _, c := range s {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return nil, ErrInvalidCharacter
		}
		x.Mul(x, base)
		x.Add(x, big.NewInt(int64(idx)))
	}

	decoded := x.Bytes()

	leadingZeros := 0
	for _, c := range s {
		if byte(c) != alphabet[0] {
			break
		}
		leadingZeros++
	}

	out := make([]byte, leadingZeros+len(decoded))
	copy(out[leadingZeros:], decoded)
	return out, nil
}

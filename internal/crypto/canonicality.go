package crypto

import (
	"math/big"
)

// Canonicality classifies an ECDSA signature encoding.
type Canonicality int

const (
	// CanonicityNone indicates the signature is not canonical (invalid format or out of range).
	CanonicityNone Canonicality = iota
	// CanonicityCanonical indicates the signature is valid but malleable.
	// Both (R, S) and (R, G-S) verify for the same message.
	CanonicityCanonical
	// CanonicityFullyCanonical indicates S <= G/2, the unique low-S form.
	CanonicityFullyCanonical
)

var (
	// secp256k1Order is the order of the secp256k1 curve group.
	// G = 0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141
	secp256k1Order = func() *big.Int {
		n, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
		return n
	}()

	// secp256k1HalfOrder is G/2, used to determine full canonicality.
	secp256k1HalfOrder = new(big.Int).Rsh(secp256k1Order, 1)

	// ed25519Order is the order of the Ed25519 subgroup (L), big endian.
	ed25519Order = []byte{
		0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x14, 0xDE, 0xF9, 0xDE, 0xA2, 0xF7, 0x9C, 0xD6,
		0x58, 0x12, 0x63, 0x1A, 0x5C, 0xF5, 0xD3, 0xED,
	}
)

// ECDSACanonicality checks a DER-encoded ECDSA signature.
//
// A signature is canonical if the DER encoding is strict and both R and
// S are in [1, G-1]. It is fully canonical if additionally S <= G/2.
// Only fully canonical signatures are accepted on submitted
// transactions, otherwise a third party could re-encode the signature
// and change the transaction hash in flight.
func ECDSACanonicality(sig []byte) Canonicality {
	// DER signature format:
	// 0x30 <total-len> 0x02 <r-len> <r> 0x02 <s-len> <s>
	if len(sig) < 8 || len(sig) > 72 {
		return CanonicityNone
	}

	if sig[0] != 0x30 {
		return CanonicityNone
	}
	if int(sig[1]) != len(sig)-2 {
		return CanonicityNone
	}

	rSlice, remaining, ok := parseDERInteger(sig[2:])
	if !ok {
		return CanonicityNone
	}

	sSlice, remaining, ok := parseDERInteger(remaining)
	if !ok {
		return CanonicityNone
	}

	if len(remaining) != 0 {
		return CanonicityNone
	}

	r := new(big.Int).SetBytes(rSlice)
	s := new(big.Int).SetBytes(sSlice)

	if r.Sign() <= 0 || r.Cmp(secp256k1Order) >= 0 {
		return CanonicityNone
	}
	if s.Sign() <= 0 || s.Cmp(secp256k1Order) >= 0 {
		return CanonicityNone
	}

	if s.Cmp(secp256k1HalfOrder) <= 0 {
		return CanonicityFullyCanonical
	}

	return CanonicityCanonical
}

// parseDERInteger parses a DER-encoded integer: 0x02 <length> <bytes>.
// Returns the integer bytes, the remaining data, and a success flag.
func parseDERInteger(data []byte) ([]byte, []byte, bool) {
	if len(data) < 2 {
		return nil, nil, false
	}

	if data[0] != 0x02 {
		return nil, nil, false
	}

	length := int(data[1])
	if length < 1 || length > 33 {
		return nil, nil, false
	}

	if len(data) < 2+length {
		return nil, nil, false
	}

	intBytes := data[2 : 2+length]

	// High bit set without a leading zero would read as negative.
	if (intBytes[0] & 0x80) != 0 {
		return nil, nil, false
	}

	// Minimal encoding: a leading zero is only allowed when the next
	// byte has the high bit set.
	if intBytes[0] == 0 {
		if length == 1 {
			return nil, nil, false
		}
		if (intBytes[1] & 0x80) == 0 {
			return nil, nil, false
		}
	}

	return intBytes, data[2+length:], true
}

// Ed25519Canonical checks that an Ed25519 signature is 64 bytes and its
// S component (little endian, bytes 32..63) is below the subgroup order
// L. Signatures with S >= L verify under some implementations but are
// malleable.
func Ed25519Canonical(sig []byte) bool {
	if len(sig) != 64 {
		return false
	}

	sLE := sig[32:64]

	sBE := make([]byte, 32)
	for i := 0; i < 32; i++ {
		sBE[i] = sLE[31-i]
	}

	return bytesLessThan(sBE, ed25519Order)
}

// bytesLessThan compares two big-endian byte slices, true if a < b.
func bytesLessThan(a, b []byte) bool {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	for i := 0; i < maxLen; i++ {
		var aByte, bByte byte
		if i < len(a) {
			aByte = a[i]
		}
		if i < len(b) {
			bByte = b[i]
		}
		if aByte < bByte {
			return true
		}
		if aByte > bByte {
			return false
		}
	}
	return false
}

package crypto

import (
	"crypto/sha512"
)

// Sha512Half computes the SHA-512 digest over the concatenation of the
// inputs and returns the first 256 bits. All ledger keys and signing
// digests in swapd are derived through this function.
func Sha512Half(inputs ...[]byte) [32]byte {
	h := sha512.New()
	for _, input := range inputs {
		h.Write(input)
	}
	var half [32]byte
	copy(half[:], h.Sum(nil)[:32])
	return half
}

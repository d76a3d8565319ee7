package crypto

import (
	"crypto/rand"
	"errors"
	"io"
)

// SeedSize is the entropy size used for account seeds, in bytes.
const SeedSize = 16

// ErrRandomGeneration is returned when random number generation fails.
var ErrRandomGeneration = errors.New("failed to generate random bytes")

// RandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand which reads from the system's CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	b := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return nil, ErrRandomGeneration
	}
	return b, nil
}

// RandomSeed generates fresh seed entropy for key derivation. Callers
// that encode or discard the seed should SecureErase it afterwards.
func RandomSeed() ([]byte, error) {
	return RandomBytes(SeedSize)
}

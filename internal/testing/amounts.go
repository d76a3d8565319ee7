package testing

import (
	"github.com/LeJamon/goswapd/internal/core/amount"
)

// SWP converts whole SWP into base units.
// For example, SWP(100) returns 100,000,000 base units.
func SWP(n uint64) amount.Amount {
	return amount.SWP(n)
}

// Units returns the base unit amount unchanged.
// This is a convenience function for clarity when specifying raw units.
func Units(n uint64) amount.Amount {
	return amount.New(n)
}

// TokenUnits converts display units of a token at the given precision
// into raw token units. For example, TokenUnits(5, 2) returns 500.
func TokenUnits(display uint64, precision uint8) amount.Amount {
	scale := uint64(1)
	for i := uint8(0); i < precision; i++ {
		scale *= 10
	}
	v, err := amount.New(display).Mul(scale)
	if err != nil {
		panic("token amount overflow: " + err.Error())
	}
	return v
}

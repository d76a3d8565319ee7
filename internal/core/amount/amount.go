// Package amount provides the unsigned quantity type used for native
// balances, token balances and escrows. All mutating arithmetic is
// checked; balances can never wrap around.
package amount

import (
	"errors"
	"fmt"
)

// Amount is a quantity in base units. The native unit SWP subdivides
// into one million base units; token quantities use their asset's own
// precision but share this representation.
type Amount uint64

// UnitsPerSWP is the number of base units in one SWP.
const UnitsPerSWP Amount = 1_000_000

// MaxAmount is the largest representable quantity.
const MaxAmount Amount = ^Amount(0)

var (
	// ErrOverflow is returned when an addition would exceed MaxAmount.
	ErrOverflow = errors.New("amount: arithmetic overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("amount: arithmetic underflow")
)

// New returns an Amount of raw base units.
func New(units uint64) Amount {
	return Amount(units)
}

// SWP converts whole SWP into base units.
func SWP(x uint64) Amount {
	return Amount(x) * UnitsPerSWP
}

// Units returns the raw base unit count.
func (a Amount) Units() uint64 {
	return uint64(a)
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns a*factor or ErrOverflow.
func (a Amount) Mul(factor uint64) (Amount, error) {
	if factor == 0 || a == 0 {
		return 0, nil
	}
	product := a * Amount(factor)
	if product/Amount(factor) != a {
		return 0, ErrOverflow
	}
	return product, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// Decimal returns the amount in whole SWP for display purposes only.
func (a Amount) Decimal() float64 {
	return float64(a) / float64(UnitsPerSWP)
}

// String renders the raw base unit count.
func (a Amount) String() string {
	return fmt.Sprintf("%d", uint64(a))
}

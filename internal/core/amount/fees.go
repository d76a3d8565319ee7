package amount

// Fees bundles the ledger's cost schedule. Base is the reference
// transaction fee. Reserve is the floor an account's native balance may
// never be spent below. Increment is the baseline funded into every new
// offer entry; it stays locked in the entry for the record's lifetime.
type Fees struct {
	Base      Amount
	Reserve   Amount
	Increment Amount
}

// DefaultFees is the schedule applied when the config does not override
// it: a 10 unit reference fee, 10 SWP account reserve and a 2 SWP
// baseline per offer entry.
func DefaultFees() Fees {
	return Fees{
		Base:      New(10),
		Reserve:   SWP(10),
		Increment: SWP(2),
	}
}

// EntryBaseline returns the native quantity a maker locks into a fresh
// offer entry on creation.
func (f Fees) EntryBaseline() Amount {
	return f.Increment
}

// Spendable returns how much of balance an account may pay out while
// keeping its reserve intact. Returns zero when the balance is already
// at or below the reserve.
func (f Fees) Spendable(balance Amount) Amount {
	if balance <= f.Reserve {
		return 0
	}
	return balance - f.Reserve
}

package builders

// Account is a lightweight account handle for building test
// transactions: an address plus a locally tracked sequence.
type Account struct {
	// Address is the classic base58 address.
	Address string

	// Sequence is the next sequence number for the account.
	Sequence uint32
}

// NewAccount creates an account handle for the given address.
func NewAccount(address string) *Account {
	return &Account{Address: address, Sequence: 1}
}

// NewAccountWithSeq creates an account handle with an explicit starting
// sequence.
func NewAccountWithSeq(address string, sequence uint32) *Account {
	return &Account{Address: address, Sequence: sequence}
}

// NextSeq returns the current sequence and advances it.
func (a *Account) NextSeq() uint32 {
	seq := a.Sequence
	a.Sequence++
	return seq
}

// Well-known test accounts
var (
	// Master holds the entire initial supply at genesis. The address
	// matches genesis.MasterAddress.
	Master = NewAccount("rGWrZyQqhTp9Xu7G5Pkayo7bXjH4k4QYpf")

	// Alice is a commonly used test account.
	Alice = NewAccount("rN7n3473SaZBCG4dFL83w7a1RXtXtbk2D9")

	// Bob is a commonly used test account.
	Bob = NewAccount("rPMh7Pi9ct699iZUTWaytJUoHcJ7cgyziK")

	// Carol is a commonly used test account.
	Carol = NewAccount("rH4KEcG9dEwGwpn6AyoWK9cZPLL4RLSmWW")

	// Dave is a commonly used test account.
	Dave = NewAccount("rG1QQv2nh2gr7RCZ1P8YYcBUKCCN633jCn")

	// Issuer is commonly used as the registrar of test assets.
	Issuer = NewAccount("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
)

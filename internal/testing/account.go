package testing

import (
	"encoding/hex"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/crypto"
	cryptocommon "github.com/LeJamon/goswapd/internal/crypto/common"
)

// Account is a test account with its keypair and address. Accounts are
// derived deterministically from their name, so the same name always
// yields the same account across runs.
type Account struct {
	// Name identifies the account in test output.
	Name string

	// KeyType is the signature algorithm behind the keypair.
	KeyType crypto.KeyType

	// Seed is the entropy the keypair was derived from.
	Seed []byte

	// Address is the classic base58 address.
	Address string

	// PublicKey and PrivateKey are the raw key bytes.
	PublicKey  []byte
	PrivateKey []byte

	// ID is the 20-byte account ID behind the address.
	ID [20]byte
}

// NewAccount creates a test account keyed by name. The seed is the
// first half of SHA-512 over the name, matching how the genesis master
// account derives from its passphrase.
func NewAccount(name string) *Account {
	return NewAccountWithKeyType(name, crypto.KeyTypeEd25519)
}

// NewAccountWithKeyType creates a test account with the given signature
// algorithm.
func NewAccountWithKeyType(name string, kt crypto.KeyType) *Account {
	return fromSeed(name, seedFromString(name), kt)
}

// NewAccountFromPassphrase creates a test account from a passphrase
// that differs from its display name. Useful for well-known accounts.
func NewAccountFromPassphrase(name, passphrase string) *Account {
	return fromSeed(name, seedFromString(passphrase), crypto.KeyTypeEd25519)
}

// MasterAccount returns the genesis master account, which holds the
// entire native supply on a fresh ledger.
func MasterAccount() *Account {
	return NewAccountFromPassphrase("master", genesis.MasterPassphrase)
}

func seedFromString(s string) []byte {
	h := cryptocommon.Sha512Half([]byte(s))
	return h[:addresscodec.SeedLength]
}

func fromSeed(name string, seed []byte, kt crypto.KeyType) *Account {
	provider, err := crypto.ProviderFor(kt)
	if err != nil {
		panic("account " + name + ": " + err.Error())
	}
	privHex, pubHex, err := provider.GenerateKeypair(seed)
	if err != nil {
		panic("derive keypair for account " + name + ": " + err.Error())
	}

	privKey, err := hex.DecodeString(privHex)
	if err != nil {
		panic("decode private key: " + err.Error())
	}
	pubKey, err := hex.DecodeString(pubHex)
	if err != nil {
		panic("decode public key: " + err.Error())
	}

	address, err := addresscodec.EncodeClassicAddressFromPublicKeyHex(pubHex)
	if err != nil {
		panic("derive address for account " + name + ": " + err.Error())
	}
	_, idBytes, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		panic("decode account id: " + err.Error())
	}
	var id [20]byte
	copy(id[:], idBytes)

	return &Account{
		Name:       name,
		KeyType:    kt,
		Seed:       seed,
		Address:    address,
		PublicKey:  pubKey,
		PrivateKey: privKey,
		ID:         id,
	}
}

// PublicKeyHex returns the public key as a hex string.
func (a *Account) PublicKeyHex() string {
	return hex.EncodeToString(a.PublicKey)
}

// AccountIDHex returns the account ID as a hex string.
func (a *Account) AccountIDHex() string {
	return hex.EncodeToString(a.ID[:])
}

// String implements the Stringer interface for test output.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}

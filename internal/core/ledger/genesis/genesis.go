// Package genesis builds the first ledger. The genesis ledger carries
// exactly two records: the master account holding the whole initial
// supply, and the fee settings singleton.
package genesis

import (
	"encoding/hex"
	"fmt"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/crypto"
	common "github.com/LeJamon/goswapd/internal/crypto/common"
)

// GenesisLedgerSequence is the sequence number of the first ledger.
const GenesisLedgerSequence uint32 = 1

// InitialSupply is the native supply created at genesis, all of it in
// the master account.
var InitialSupply = amount.SWP(100_000_000_000)

// MasterPassphrase seeds the master account keypair. The derived
// address is well known and fixed for every network.
const MasterPassphrase = "masterpassphrase"

// MasterAddress is the address derived from MasterPassphrase.
const MasterAddress = "rGWrZyQqhTp9Xu7G5Pkayo7bXjH4k4QYpf"

// Config controls genesis construction.
type Config struct {
	Fees          amount.Fees
	InitialSupply amount.Amount
	// CloseTime is the genesis close time in network epoch seconds.
	CloseTime uint32
}

// DefaultConfig returns the standard genesis configuration.
func DefaultConfig() Config {
	return Config{
		Fees:          amount.DefaultFees(),
		InitialSupply: InitialSupply,
	}
}

// MasterSeed returns the seed entropy behind the master account.
func MasterSeed() []byte {
	h := common.Sha512Half([]byte(MasterPassphrase))
	return h[:addresscodec.SeedLength]
}

// MasterKeypair derives the master account's Ed25519 keypair.
func MasterKeypair() (privateKey, publicKey string, err error) {
	provider, err := crypto.ProviderFor(crypto.KeyTypeEd25519)
	if err != nil {
		return "", "", err
	}
	return provider.GenerateKeypair(MasterSeed())
}

// GenerateGenesisAccountID derives the master account ID and address
// from the master passphrase.
func GenerateGenesisAccountID() ([20]byte, string, error) {
	_, publicKey, err := MasterKeypair()
	if err != nil {
		return [20]byte{}, "", err
	}

	pubKeyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return [20]byte{}, "", err
	}

	accountID := crypto.CalcAccountID(pubKeyBytes)
	address, err := addresscodec.EncodeAccountIDToClassicAddress(accountID[:])
	if err != nil {
		return [20]byte{}, "", err
	}
	return accountID, address, nil
}

// Create builds and closes the genesis ledger.
func Create(cfg Config) (*ledger.Ledger, error) {
	accountID, _, err := GenerateGenesisAccountID()
	if err != nil {
		return nil, fmt.Errorf("derive master account: %w", err)
	}

	if cfg.InitialSupply.IsZero() {
		cfg.InitialSupply = InitialSupply
	}

	l := ledger.NewOpen(GenesisLedgerSequence, cfg.InitialSupply, [32]byte{}, 0)

	master := &record.AccountRoot{
		Account:  accountID,
		Sequence: 1,
		Balance:  cfg.InitialSupply,
	}
	if err := l.Insert(keylet.Account(accountID), record.SerializeAccountRoot(master)); err != nil {
		return nil, fmt.Errorf("insert master account: %w", err)
	}

	fees := record.NewFeeSettings(cfg.Fees)
	if err := l.Insert(keylet.Fees(), record.SerializeFeeSettings(fees)); err != nil {
		return nil, fmt.Errorf("insert fee settings: %w", err)
	}

	if err := l.Close(cfg.CloseTime); err != nil {
		return nil, fmt.Errorf("close genesis: %w", err)
	}
	return l, nil
}

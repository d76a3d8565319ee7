package grpc

// Request and response types of the query service. These are plain
// structs carried over CBOR; field names are the wire schema, so
// renames are breaking changes.

// GetServerInfoRequest asks for a node summary.
type GetServerInfoRequest struct{}

// GetServerInfoResponse summarizes the node.
type GetServerInfoResponse struct {
	Version            string
	NetworkID          uint32
	Standalone         bool
	CompleteLedgers    string
	OpenSequence       uint32
	OpenTxCount        int
	ValidatedSequence  uint32
	ValidatedHash      [32]byte
	ValidatedCloseTime uint32
	TotalSupply        uint64
	BaseFee            uint64
	AccountReserve     uint64
	OfferIncrement     uint64
	UptimeSeconds      int64
}

// GetLedgerRequest identifies a ledger. Specifier accepts the
// symbolic names current, closed and validated, a decimal sequence,
// or a 64-character hex header hash; empty means current.
type GetLedgerRequest struct {
	Specifier string
}

// GetLedgerResponse carries one ledger's header facts.
type GetLedgerResponse struct {
	Sequence    uint32
	Hash        [32]byte
	ParentHash  [32]byte
	CloseTime   uint32
	TotalSupply uint64
	TxCount     int
	EntryCount  int
	Closed      bool
	Validated   bool
}

// GetAccountRequest identifies an account in a ledger.
type GetAccountRequest struct {
	// Address is the account's classic address.
	Address string

	// Ledger is a ledger specifier; empty means current.
	Ledger string
}

// GetAccountResponse carries one account root.
type GetAccountResponse struct {
	Address        string
	Balance        uint64
	Sequence       uint32
	OwnerCount     uint32
	LedgerSequence uint32
	Validated      bool
}

// OfferState is one offer entry, projected for transport. Maker and
// Taker are classic addresses; Taker is empty for public offers.
// Assets render as "native" or the token's upper-case hex key.
type OfferState struct {
	OfferID        string
	Kind           string
	Status         string
	Maker          string
	Taker          string
	OfferAsset     string
	OfferAmount    uint64
	ReceiveAsset   string
	ReceiveAmount  uint64
	Balance        uint64
	EscrowedNative uint64

	// Expiration is unix seconds; zero means the offer never expires
	// on its own.
	Expiration int64

	IsCounter   bool
	OriginOffer string
	Salt        uint8
}

// GetOfferRequest identifies one offer entry.
type GetOfferRequest struct {
	// OfferID is the 64-character hex entry key.
	OfferID string

	// Ledger is a ledger specifier; empty means current.
	Ledger string
}

// GetOfferResponse carries one offer entry.
type GetOfferResponse struct {
	Offer          OfferState
	LedgerSequence uint32
	Validated      bool
}

// GetAccountOffersRequest lists an account's offers.
type GetAccountOffersRequest struct {
	Address string
	Ledger  string
}

// GetAccountOffersResponse lists every offer the account makes or is
// named taker of, ordered by offer identifier.
type GetAccountOffersResponse struct {
	Address        string
	Offers         []OfferState
	LedgerSequence uint32
	Validated      bool
}

// GetTxRequest locates an applied transaction by hash.
type GetTxRequest struct {
	Hash [32]byte
}

// GetTxResponse carries an applied transaction: the canonical wire
// blob and the recorded metadata JSON.
type GetTxResponse struct {
	Hash           [32]byte
	LedgerSequence uint32
	CloseTime      uint32
	Validated      bool
	Blob           []byte
	MetaJSON       []byte
}

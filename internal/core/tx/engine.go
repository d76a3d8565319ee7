package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/amount"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
)

const (
	// MaxMemoSize is the combined decoded size cap across all memos.
	MaxMemoSize = 1024
	// MaxMemoTypeSize is the decoded size cap of a single MemoType.
	MaxMemoTypeSize = 256
	// MaxMemoDataSize is the decoded size cap of a single MemoData.
	MaxMemoDataSize = 1024

	// LegacyNetworkIDThreshold splits networks that forbid the NetworkID
	// field from networks that require it.
	LegacyNetworkIDThreshold = 1024

	// DefaultMaxFee caps the fee a transaction may offer when the config
	// does not override it.
	DefaultMaxFee amount.Amount = 1_000_000
)

// Engine validates transactions and applies them to a ledger view.
type Engine struct {
	view   LedgerView
	config EngineConfig
}

// EngineConfig holds the parameters a transaction is judged against.
type EngineConfig struct {
	// Fees is the cost schedule of the ledger being built.
	Fees amount.Fees

	// MaxFee caps the fee a transaction may offer. Zero means
	// DefaultMaxFee.
	MaxFee amount.Amount

	// LedgerSequence is the sequence of the ledger being built.
	LedgerSequence uint32

	// ParentCloseTime is the close time of the parent ledger in network
	// seconds. Expiration checks measure against it.
	ParentCloseTime uint32

	// NetworkID identifies the network. Networks above
	// LegacyNetworkIDThreshold require the field in every transaction;
	// networks at or below it forbid the field.
	NetworkID uint32

	// SkipSignatureVerification disables signature checks, for tests
	// and trusted local submission.
	SkipSignatureVerification bool

	// Standalone marks a node that closes ledgers on its own schedule.
	Standalone bool
}

// LedgerView is the state access a transaction application needs. Both
// an open ledger and an ApplyStateTable buffering one satisfy it.
type LedgerView interface {
	// Read returns the entry at k.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists reports whether an entry exists at k.
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry at k.
	Insert(k keylet.Keylet, data []byte) error

	// Update rewrites the entry at k.
	Update(k keylet.Keylet, data []byte) error

	// Erase removes the entry at k.
	Erase(k keylet.Keylet) error

	// DestroyUnits records native units removed from circulation.
	DestroyUnits(a amount.Amount)

	// ForEach visits every entry until fn returns false.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult is the outcome of submitting one transaction.
type ApplyResult struct {
	// Result is the transaction result code.
	Result Result

	// Applied reports whether the ledger changed: success and tec
	// results apply, everything else leaves no trace.
	Applied bool

	// Fee is the fee charged in base units.
	Fee amount.Amount

	// Metadata describes the changes made.
	Metadata *Metadata

	// Message is the human-readable result description.
	Message string
}

// Metadata describes every ledger change a transaction made.
type Metadata struct {
	// AffectedNodes lists the entries created, modified or deleted.
	AffectedNodes []AffectedNode

	// TransactionIndex is the transaction's position in its ledger.
	TransactionIndex uint32

	// TransactionResult is the result code.
	TransactionResult Result

	// DeliveredAmount is the quantity actually delivered by a payment
	// or settled swap leg.
	DeliveredAmount *amount.Amount
}

// AffectedNode is one ledger entry touched by a transaction.
type AffectedNode struct {
	// NodeType is CreatedNode, ModifiedNode or DeletedNode.
	NodeType string

	// LedgerEntryType names the record kind.
	LedgerEntryType string

	// LedgerIndex is the entry key in upper-case hex.
	LedgerIndex string

	// FinalFields is the entry's state after the transaction, present on
	// modified and deleted nodes.
	FinalFields map[string]any

	// PreviousFields holds the prior values of fields the transaction
	// changed.
	PreviousFields map[string]any

	// NewFields is the entry's state at creation, present on created
	// nodes.
	NewFields map[string]any

	// PreviousTxnID identifies the transaction that touched the entry
	// before this one.
	PreviousTxnID string

	// PreviousTxnLgrSeq is the ledger that transaction applied in.
	PreviousTxnLgrSeq uint32
}

// MarshalJSON renders metadata with nodes sorted by entry key and each
// node nested under its NodeType, the shape API clients consume.
func (m Metadata) MarshalJSON() ([]byte, error) {
	output := make(map[string]any)

	sortedNodes := make([]AffectedNode, len(m.AffectedNodes))
	copy(sortedNodes, m.AffectedNodes)
	sort.Slice(sortedNodes, func(i, j int) bool {
		return sortedNodes[i].LedgerIndex < sortedNodes[j].LedgerIndex
	})

	affectedNodes := make([]map[string]any, 0, len(sortedNodes))
	for _, node := range sortedNodes {
		affectedNodes = append(affectedNodes, nestAffectedNode(node))
	}
	output["AffectedNodes"] = affectedNodes
	output["TransactionIndex"] = m.TransactionIndex
	output["TransactionResult"] = m.TransactionResult.String()
	if m.DeliveredAmount != nil {
		output["delivered_amount"] = m.DeliveredAmount.String()
	}

	return json.Marshal(output)
}

// nestAffectedNode wraps a node's fields under its NodeType key.
func nestAffectedNode(n AffectedNode) map[string]any {
	inner := make(map[string]any)
	if n.FinalFields != nil {
		inner["FinalFields"] = n.FinalFields
	}
	inner["LedgerEntryType"] = n.LedgerEntryType
	inner["LedgerIndex"] = n.LedgerIndex
	if len(n.PreviousFields) > 0 {
		inner["PreviousFields"] = n.PreviousFields
	}
	if n.PreviousTxnID != "" {
		inner["PreviousTxnID"] = n.PreviousTxnID
	}
	if n.PreviousTxnLgrSeq != 0 {
		inner["PreviousTxnLgrSeq"] = n.PreviousTxnLgrSeq
	}
	if n.NewFields != nil {
		inner["NewFields"] = n.NewFields
	}
	return map[string]any{n.NodeType: inner}
}

// NewEngine returns an engine applying transactions to view under the
// given configuration.
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Apply runs a transaction through preflight, preclaim and application.
// Success and tec results charge the fee and bump the sequence; all
// other results leave the ledger untouched.
func (e *Engine) Apply(t Transaction) ApplyResult {
	result := e.preflight(t)
	if !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			Applied: false,
			Message: result.Message(),
		}
	}

	result = e.preclaim(t)
	if !result.IsSuccess() && !result.IsTec() {
		return ApplyResult{
			Result:  result,
			Applied: false,
			Message: result.Message(),
		}
	}

	fee := e.calculateFee(t)

	txHash, err := ComputeHash(t)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Applied: false,
			Fee:     fee,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0),
		TransactionResult: TesSUCCESS,
	}
	if result.IsSuccess() {
		result = e.doApply(t, metadata, txHash)
	}
	metadata.TransactionResult = result

	if result.IsApplied() {
		e.view.DestroyUnits(fee)
	}

	return ApplyResult{
		Result:   result,
		Applied:  result.IsApplied(),
		Fee:      fee,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight checks everything knowable from the transaction alone.
func (e *Engine) preflight(t Transaction) Result {
	common := t.GetCommon()

	if common.Account == "" {
		return TemBAD_SRC_ACCOUNT
	}
	if common.TransactionType == "" {
		return TemINVALID
	}

	if result := e.validateNetworkID(common); result != TesSUCCESS {
		return result
	}
	if result := e.validateFee(common); result != TesSUCCESS {
		return result
	}
	if common.Sequence == nil {
		return TemBAD_SEQUENCE
	}
	if result := e.validateMemos(common); result != TesSUCCESS {
		return result
	}

	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(t); err != nil {
			return TemBAD_SIGNATURE
		}
	}

	if err := t.Validate(); err != nil {
		return parseValidationError(err)
	}
	return TesSUCCESS
}

// parseValidationError maps a Validate error onto a result code. An
// error whose message starts with a known code name, followed by a
// colon, a space or nothing, claims that code; everything else is
// temINVALID.
func parseValidationError(err error) Result {
	msg := err.Error()

	codes := map[string]Result{
		"temMALFORMED":       TemMALFORMED,
		"temBAD_AMOUNT":      TemBAD_AMOUNT,
		"temBAD_EXPIRATION":  TemBAD_EXPIRATION,
		"temBAD_FEE":         TemBAD_FEE,
		"temBAD_OFFER":       TemBAD_OFFER,
		"temBAD_SEQUENCE":    TemBAD_SEQUENCE,
		"temBAD_SIGNATURE":   TemBAD_SIGNATURE,
		"temBAD_SRC_ACCOUNT": TemBAD_SRC_ACCOUNT,
		"temDST_IS_SRC":      TemDST_IS_SRC,
		"temDST_NEEDED":      TemDST_NEEDED,
		"temINVALID":         TemINVALID,
		"temINVALID_FLAG":    TemINVALID_FLAG,
		"temREDUNDANT":       TemREDUNDANT,
	}

	for code, result := range codes {
		if len(msg) >= len(code) && msg[:len(code)] == code {
			if len(msg) == len(code) || msg[len(code)] == ':' || msg[len(code)] == ' ' {
				return result
			}
		}
	}
	return TemINVALID
}

// validateNetworkID enforces the NetworkID field rules: legacy
// networks forbid the field, newer networks require it to be present
// and matching.
func (e *Engine) validateNetworkID(common *Common) Result {
	nodeNetworkID := e.config.NetworkID
	txNetworkID := common.NetworkID

	if nodeNetworkID <= LegacyNetworkIDThreshold {
		if txNetworkID != nil {
			return TelNETWORK_ID_MAKES_TX_NON_CANONICAL
		}
	} else {
		if txNetworkID == nil {
			return TelREQUIRES_NETWORK_ID
		}
		if *txNetworkID != nodeNetworkID {
			return TelWRONG_NETWORK
		}
	}
	return TesSUCCESS
}

// validateFee rejects malformed, zero, negative and excessive fees. An
// absent fee is filled with the base fee at application time.
func (e *Engine) validateFee(common *Common) Result {
	if common.Fee == "" {
		return TesSUCCESS
	}

	feeInt, err := strconv.ParseInt(common.Fee, 10, 64)
	if err != nil {
		return TemBAD_FEE
	}
	if feeInt <= 0 {
		return TemBAD_FEE
	}

	maxFee := e.config.MaxFee
	if maxFee.IsZero() {
		maxFee = DefaultMaxFee
	}
	if amount.New(uint64(feeInt)) > maxFee {
		return TemBAD_FEE
	}
	return TesSUCCESS
}

// validateMemos checks every memo part is hex, within its size cap,
// and for MemoType and MemoFormat decodes to URL characters only.
func (e *Engine) validateMemos(common *Common) Result {
	if len(common.Memos) == 0 {
		return TesSUCCESS
	}

	totalSize := 0
	for _, memoWrapper := range common.Memos {
		memo := memoWrapper.Memo

		if memo.MemoType != "" {
			memoTypeBytes, err := hex.DecodeString(memo.MemoType)
			if err != nil {
				return TemINVALID
			}
			if len(memoTypeBytes) > MaxMemoTypeSize {
				return TemINVALID
			}
			totalSize += len(memoTypeBytes)
			if !isValidURLBytes(memoTypeBytes) {
				return TemINVALID
			}
		}

		if memo.MemoData != "" {
			memoDataBytes, err := hex.DecodeString(memo.MemoData)
			if err != nil {
				return TemINVALID
			}
			if len(memoDataBytes) > MaxMemoDataSize {
				return TemINVALID
			}
			totalSize += len(memoDataBytes)
		}

		if memo.MemoFormat != "" {
			memoFormatBytes, err := hex.DecodeString(memo.MemoFormat)
			if err != nil {
				return TemINVALID
			}
			totalSize += len(memoFormatBytes)
			if !isValidURLBytes(memoFormatBytes) {
				return TemINVALID
			}
		}
	}

	if totalSize > MaxMemoSize {
		return TemINVALID
	}
	return TesSUCCESS
}

func isValidURLBytes(data []byte) bool {
	for _, b := range data {
		if !isURLChar(b) {
			return false
		}
	}
	return true
}

// isURLChar reports whether c may appear in an RFC 3986 URL.
func isURLChar(c byte) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	switch c {
	case '-', '.', '_', '~', ':', '/', '?', '#', '[', ']', '@', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '%':
		return true
	}
	return false
}

// preclaim checks the transaction against current ledger state: the
// sender exists, signed with its own key, is at the right sequence and
// can pay the fee.
func (e *Engine) preclaim(t Transaction) Result {
	common := t.GetCommon()

	accountID, err := DecodeAccountID(common.Account)
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}

	accountKey := keylet.Account(accountID)
	exists, err := e.view.Exists(accountKey)
	if err != nil {
		return TefINTERNAL
	}
	if !exists {
		return TerNO_ACCOUNT
	}

	accountData, err := e.view.Read(accountKey)
	if err != nil {
		return TefINTERNAL
	}
	account, err := record.ParseAccountRoot(accountData)
	if err != nil {
		return TefINTERNAL
	}

	if !e.config.SkipSignatureVerification && common.SigningPubKey != "" {
		signerAddress, addrErr := addresscodec.EncodeClassicAddressFromPublicKeyHex(common.SigningPubKey)
		if addrErr != nil {
			return TefBAD_AUTH
		}
		if signerAddress != common.Account {
			return TefBAD_AUTH
		}
	}

	if common.Sequence != nil {
		if *common.Sequence < account.Sequence {
			return TefPAST_SEQ
		}
		if *common.Sequence > account.Sequence {
			return TerPRE_SEQ
		}
	}

	fee := e.calculateFee(t)
	if fee < e.config.Fees.Base {
		return TelINSUF_FEE_P
	}
	if account.Balance < fee {
		return TerINSUF_FEE_B
	}

	if common.LastLedgerSequence != nil {
		if e.config.LedgerSequence > *common.LastLedgerSequence {
			return TefMAX_LEDGER
		}
	}

	return TesSUCCESS
}

// doApply charges the fee, bumps the sequence and runs the transactor
// through a state table. A tec result throws the table away and writes
// only the charged account back, except that tecEXPIRED lets the
// transactor retire the expired entry directly on the base view.
func (e *Engine) doApply(t Transaction, metadata *Metadata, txHash [32]byte) Result {
	common := t.GetCommon()
	accountID, _ := DecodeAccountID(common.Account)
	accountKey := keylet.Account(accountID)

	accountData, err := e.view.Read(accountKey)
	if err != nil {
		return TefINTERNAL
	}
	account, err := record.ParseAccountRoot(accountData)
	if err != nil {
		return TefINTERNAL
	}

	fee := e.calculateFee(t)

	originalBalance := account.Balance
	originalSequence := account.Sequence

	account.Balance, err = account.Balance.Sub(fee)
	if err != nil {
		return TefINTERNAL
	}
	if common.Sequence != nil {
		account.Sequence = *common.Sequence + 1
	}
	account.PreviousTxnID = txHash
	account.PreviousTxnLgrSeq = e.config.LedgerSequence

	table := NewApplyStateTable(e.view, txHash, e.config.LedgerSequence)

	ctx := &ApplyContext{
		View:      table,
		Account:   account,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    txHash,
		Metadata:  metadata,
		Engine:    e,
	}

	var result Result
	if appliable, ok := t.(Appliable); ok {
		result = appliable.Apply(ctx)
	} else {
		result = TesSUCCESS
	}

	if result.IsTec() {
		account.Balance, err = originalBalance.Sub(fee)
		if err != nil {
			return TefINTERNAL
		}
		account.Sequence = originalSequence
		if common.Sequence != nil {
			account.Sequence = *common.Sequence + 1
		}

		if err := e.view.Update(accountKey, record.SerializeAccountRoot(account)); err != nil {
			return TefINTERNAL
		}

		// tecEXPIRED still retires the expired entry so its escrow flows
		// back; the transactor does that directly on the base view.
		if result == TecEXPIRED {
			if tecApplier, ok := t.(TecApplier); ok {
				tecCtx := &ApplyContext{
					View:      e.view,
					Account:   account,
					AccountID: accountID,
					Config:    e.config,
					TxHash:    txHash,
					Metadata:  metadata,
					Engine:    e,
				}
				tecApplier.ApplyOnTec(tecCtx)
			}
		}

		metadata.AffectedNodes = []AffectedNode{
			{
				NodeType:        "ModifiedNode",
				LedgerEntryType: "AccountRoot",
				LedgerIndex:     fmt.Sprintf("%X", accountKey.Key),
			},
		}
		return result
	}

	if err := table.Update(accountKey, record.SerializeAccountRoot(account)); err != nil {
		return TefINTERNAL
	}

	generatedMeta, err := table.Apply()
	if err != nil {
		return TefINTERNAL
	}
	metadata.AffectedNodes = generatedMeta.AffectedNodes

	return result
}

// calculateFee returns the fee the transaction pays: its declared fee
// if parseable, the base fee otherwise.
func (e *Engine) calculateFee(t Transaction) amount.Amount {
	common := t.GetCommon()
	if common.Fee != "" {
		fee, err := strconv.ParseUint(common.Fee, 10, 64)
		if err == nil {
			return amount.New(fee)
		}
	}
	return e.config.Fees.Base
}

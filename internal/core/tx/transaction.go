package tx

import "errors"

// Common errors used across transaction validation.
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidDestination     = errors.New("invalid destination")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all transaction types implement.
type Transaction interface {
	// TxType returns the transaction type.
	TxType() Type

	// GetCommon returns the common transaction fields.
	GetCommon() *Common

	// Validate checks if the transaction is well formed.
	Validate() error

	// Flatten returns a flat map of all transaction fields for
	// serialization.
	Flatten() (map[string]any, error)
}

// Appliable is implemented by transaction types that can apply
// themselves to ledger state. This replaces a central switch statement
// in the engine.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// TecApplier is implemented by transaction types that write a state
// change even when the result is tecEXPIRED. The engine invokes it
// against the base view after discarding the staged changes, so the
// expiry marking survives the failed transaction.
type TecApplier interface {
	ApplyOnTec(ctx *ApplyContext)
}

// Memo represents a memo attached to a transaction. All three parts
// are hex encoded.
type Memo struct {
	MemoType   string `json:"MemoType,omitempty"`
	MemoData   string `json:"MemoData,omitempty"`
	MemoFormat string `json:"MemoFormat,omitempty"`
}

// MemoWrapper wraps a Memo for JSON serialization.
type MemoWrapper struct {
	Memo Memo `json:"Memo"`
}

// Common contains fields common to all transaction types.
type Common struct {
	// Required fields
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`

	// Fee in native units (required for signing, optional for submission)
	Fee string `json:"Fee,omitempty"`

	// Sequence number
	Sequence *uint32 `json:"Sequence,omitempty"`

	// Optional common fields
	Flags              *uint32       `json:"Flags,omitempty"`
	LastLedgerSequence *uint32       `json:"LastLedgerSequence,omitempty"`
	Memos              []MemoWrapper `json:"Memos,omitempty"`
	NetworkID          *uint32       `json:"NetworkID,omitempty"`
	SigningPubKey      string        `json:"SigningPubKey,omitempty"`
	TxnSignature       string        `json:"TxnSignature,omitempty"`
}

// Validate validates the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return errors.New("Account is required")
	}
	if c.TransactionType == "" {
		return errors.New("TransactionType is required")
	}
	return nil
}

// SetFlags sets the flags field.
func (c *Common) SetFlags(flags uint32) {
	c.Flags = &flags
}

// GetFlags returns the flags value (0 if not set).
func (c *Common) GetFlags() uint32 {
	if c.Flags == nil {
		return 0
	}
	return *c.Flags
}

// SetSequence sets the sequence number.
func (c *Common) SetSequence(seq uint32) {
	c.Sequence = &seq
}

// GetSequence returns the sequence number (0 if not set).
func (c *Common) GetSequence() uint32 {
	if c.Sequence == nil {
		return 0
	}
	return *c.Sequence
}

// SetLastLedgerSequence sets the last ledger sequence.
func (c *Common) SetLastLedgerSequence(seq uint32) {
	c.LastLedgerSequence = &seq
}

// AddMemo adds a memo to the transaction.
func (c *Common) AddMemo(memoType, memoData, memoFormat string) {
	c.Memos = append(c.Memos, MemoWrapper{
		Memo: Memo{
			MemoType:   memoType,
			MemoData:   memoData,
			MemoFormat: memoFormat,
		},
	})
}

// ToMap converts common fields to a map.
func (c *Common) ToMap() map[string]any {
	m := map[string]any{
		"Account":         c.Account,
		"TransactionType": c.TransactionType,
	}

	if c.Fee != "" {
		m["Fee"] = c.Fee
	}
	if c.Sequence != nil {
		m["Sequence"] = *c.Sequence
	}
	if c.Flags != nil && *c.Flags != 0 {
		m["Flags"] = *c.Flags
	}
	if c.LastLedgerSequence != nil {
		m["LastLedgerSequence"] = *c.LastLedgerSequence
	}
	if len(c.Memos) > 0 {
		memos := make([]map[string]any, len(c.Memos))
		for i, mw := range c.Memos {
			memo := map[string]any{}
			if mw.Memo.MemoType != "" {
				memo["MemoType"] = mw.Memo.MemoType
			}
			if mw.Memo.MemoData != "" {
				memo["MemoData"] = mw.Memo.MemoData
			}
			if mw.Memo.MemoFormat != "" {
				memo["MemoFormat"] = mw.Memo.MemoFormat
			}
			memos[i] = map[string]any{"Memo": memo}
		}
		m["Memos"] = memos
	}
	if c.NetworkID != nil {
		m["NetworkID"] = *c.NetworkID
	}
	if c.SigningPubKey != "" {
		m["SigningPubKey"] = c.SigningPubKey
	}
	if c.TxnSignature != "" {
		m["TxnSignature"] = c.TxnSignature
	}

	return m
}

// BaseTx provides a base implementation for transactions.
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type.
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction.
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// Flatten returns a flat map of transaction fields.
func (b *BaseTx) Flatten() (map[string]any, error) {
	return b.Common.ToMap(), nil
}

// NewBaseTx creates a new base transaction.
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
